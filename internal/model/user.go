package model

import "time"

// Roles assignable to a user. The role is embedded in access tokens
// and checked by the role middleware on protected routes.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Gender values accepted for the users.gender column.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

// User represents an account record as stored in the `users` table.
// Each field corresponds to a column in the database. The json tags
// are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags, which also keeps PasswordHash out of any
// serialized output.
//
// Fields:
//  ID           – primary key identifier (UUID string).
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique email address (uniqueness enforced by index).
//  PasswordHash – bcrypt hashed password.
//  Gender       – MALE, FEMALE or OTHER.
//  DateOfBirth  – date of birth (date portion only is significant).
//  PhoneNumber  – contact phone number.
//  Role         – ADMIN or USER.
//  AddressID    – optional owned address (nullable foreign key).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Gender       string    // users.gender
	DateOfBirth  time.Time // users.date_of_birth
	PhoneNumber  string    // users.phone_number
	Role         string    // users.role
	AddressID    *string   // users.address_id (nullable)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
