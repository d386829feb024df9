package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-account-service/internal/model"
)

const addressColumns = "id,street_address,city,state,country,postal_code,address_type,address_default,created_at,updated_at"

// AddressRepo persists address records in the 'addresses' table.
type AddressRepo struct{ DB *sql.DB }

func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{DB: db} }

// Create inserts an address and assigns its ID.
func (r *AddressRepo) Create(ctx context.Context, a *model.Address) error {
	a.ID = uuid.NewString()
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO addresses ("+addressColumns+") VALUES (?,?,?,?,?,?,?,?,?,?)",
		a.ID, a.StreetAddress, a.City, a.State, a.Country, a.PostalCode,
		a.AddressType, a.Default, a.CreatedAt, a.UpdatedAt)
	return err
}

// GetByID fetches an address by id.
func (r *AddressRepo) GetByID(ctx context.Context, id string) (model.Address, error) {
	var a model.Address
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id=? LIMIT 1", id).
		Scan(&a.ID, &a.StreetAddress, &a.City, &a.State, &a.Country, &a.PostalCode,
			&a.AddressType, &a.Default, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Update replaces all mutable fields of an address.
func (r *AddressRepo) Update(ctx context.Context, a *model.Address) error {
	a.UpdatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		`UPDATE addresses SET street_address=?, city=?, state=?, country=?, postal_code=?,
		 address_type=?, address_default=?, updated_at=? WHERE id=?`,
		a.StreetAddress, a.City, a.State, a.Country, a.PostalCode,
		a.AddressType, a.Default, a.UpdatedAt, a.ID)
	return err
}

// Delete removes an address; sql.ErrNoRows when the id is unknown.
func (r *AddressRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM addresses WHERE id=?", id)
	if err != nil {
		return err
	}
	return noRowsAsErr(res)
}
