package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-account-service/internal/model"
)

const userColumns = "id,first_name,last_name,email,password_hash,gender,date_of_birth,phone_number,role,address_id,created_at,updated_at"

// UserRepo persists account records in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and assigns its ID. Email uniqueness is enforced
// by the unique index; a duplicate maps to ErrEmailExists so concurrent
// creates with the same email cannot both succeed.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Gender,
		u.DateOfBirth, u.PhoneNumber, u.Role, u.AddressID, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by email. The lookup is exact; emails are
// stored as given and uniqueness is case-sensitive at write time.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// ExistsByEmail reports whether any user holds the given email.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=?", email).Scan(&n)
	return n > 0, err
}

// Update replaces the mutable profile fields. The password hash is
// deliberately absent from the statement: the credential changes only
// when the approval workflow commits an approved request.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET first_name=?, last_name=?, email=?, gender=?, date_of_birth=?,
		 phone_number=?, role=?, address_id=?, updated_at=? WHERE id=?`,
		u.FirstName, u.LastName, u.Email, u.Gender, u.DateOfBirth,
		u.PhoneNumber, u.Role, u.AddressID, u.UpdatedAt, u.ID)
	if err != nil && isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// Delete removes the user together with its owned address and device
// registrations in one transaction.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var addressID sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT address_id FROM users WHERE id=? LIMIT 1", id).Scan(&addressID)
	if err != nil {
		return err // sql.ErrNoRows when the user is unknown
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_devices WHERE user_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id); err != nil {
		return err
	}
	if addressID.Valid {
		if _, err := tx.ExecContext(ctx, "DELETE FROM addresses WHERE id=?", addressID.String); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns a page of users ordered by creation time plus the total count.
func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]model.User, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at, id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func (r *UserRepo) scanOne(row rowScanner) (model.User, error) { return scanUser(row) }

func scanUser(row rowScanner) (model.User, error) {
	var (
		u         model.User
		addressID sql.NullString
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Gender, &u.DateOfBirth, &u.PhoneNumber, &u.Role, &addressID,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if addressID.Valid {
		u.AddressID = &addressID.String
	}
	return u, nil
}

// isDuplicate detects MySQL error 1062 (duplicate entry for a unique key).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// noRowsAsErr converts a zero-rows-affected result into sql.ErrNoRows so
// updates against unknown ids surface the same way lookups do.
func noRowsAsErr(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
