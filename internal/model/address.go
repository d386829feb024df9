package model

import "time"

// Address types accepted for the addresses.address_type column.
const (
	AddressTypeHome     = "HOME"
	AddressTypeWork     = "WORK"
	AddressTypeBilling  = "BILLING"
	AddressTypeShipping = "SHIPPING"
)

// Address models a row in the `addresses` table. An address is owned
// by at most one user via users.address_id and is removed together
// with its owner; addresses may also be created standalone before
// being associated.
//
// Fields:
//  ID            – primary key identifier (UUID string).
//  StreetAddress – street and house number.
//  City          – city name.
//  State         – state or province (optional).
//  Country       – two letter ISO country code.
//  PostalCode    – postal or ZIP code.
//  AddressType   – HOME, WORK, BILLING or SHIPPING.
//  Default       – whether this is the owner's default address.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Address struct {
	ID            string    // addresses.id
	StreetAddress string    // addresses.street_address
	City          string    // addresses.city
	State         string    // addresses.state
	Country       string    // addresses.country
	PostalCode    string    // addresses.postal_code
	AddressType   string    // addresses.address_type
	Default       bool      // addresses.address_default
	CreatedAt     time.Time // addresses.created_at
	UpdatedAt     time.Time // addresses.updated_at
}
