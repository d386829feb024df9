package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-account-service/internal/model"
)

// DeviceRepo persists push token registrations in the 'user_devices'
// table. A unique index on (user_id, device_token) guarantees at most
// one row per pair regardless of request interleaving.
type DeviceRepo struct{ DB *sql.DB }

func NewDeviceRepo(db *sql.DB) *DeviceRepo { return &DeviceRepo{DB: db} }

// FindByUserID returns all registrations for a user.
func (r *DeviceRepo) FindByUserID(ctx context.Context, userID string) ([]model.UserDevice, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,device_token,created_at FROM user_devices WHERE user_id=? ORDER BY created_at",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []model.UserDevice
	for rows.Next() {
		var d model.UserDevice
		if err := rows.Scan(&d.ID, &d.UserID, &d.DeviceToken, &d.CreatedAt); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// Create inserts a registration; ErrDeviceExists when the pair is known.
func (r *DeviceRepo) Create(ctx context.Context, d *model.UserDevice) error {
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_devices (id,user_id,device_token,created_at) VALUES (?,?,?,?)",
		d.ID, d.UserID, d.DeviceToken, d.CreatedAt)
	if err != nil && isDuplicate(err) {
		return ErrDeviceExists
	}
	return err
}
