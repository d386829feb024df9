package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-account-service/internal/model"
)

const changeColumns = "id,user_id,new_password_hash,status,admin_id,created_at,updated_at"

// PasswordChangeRepo persists credential change requests in the
// 'password_change_requests' table. Rows are append-then-resolve: a
// request is inserted PENDING and updated exactly once to a terminal
// status; nothing is ever deleted.
type PasswordChangeRepo struct{ DB *sql.DB }

func NewPasswordChangeRepo(db *sql.DB) *PasswordChangeRepo { return &PasswordChangeRepo{DB: db} }

// Create inserts a PENDING request and assigns its ID. The unique index
// on (user_id, pending_flag) rejects a second PENDING row per user even
// when two submissions race; the collision maps to ErrPendingExists.
func (r *PasswordChangeRepo) Create(ctx context.Context, req *model.PasswordChangeRequest) error {
	req.ID = uuid.NewString()
	req.Status = model.ChangeStatusPending
	req.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_change_requests (id,user_id,new_password_hash,status,created_at) VALUES (?,?,?,?,?)",
		req.ID, req.UserID, req.NewPasswordHash, req.Status, req.CreatedAt)
	if err != nil && isDuplicate(err) {
		return ErrPendingExists
	}
	return err
}

// GetByID fetches a request by id.
func (r *PasswordChangeRepo) GetByID(ctx context.Context, id string) (model.PasswordChangeRequest, error) {
	return scanChange(r.DB.QueryRowContext(ctx,
		"SELECT "+changeColumns+" FROM password_change_requests WHERE id=? LIMIT 1", id))
}

// FindPendingByUserID returns the single PENDING request for a user, or
// sql.ErrNoRows when none exists.
func (r *PasswordChangeRepo) FindPendingByUserID(ctx context.Context, userID string) (model.PasswordChangeRequest, error) {
	return scanChange(r.DB.QueryRowContext(ctx,
		"SELECT "+changeColumns+" FROM password_change_requests WHERE user_id=? AND status=? LIMIT 1",
		userID, model.ChangeStatusPending))
}

// FindByStatus returns all requests in the given status ordered by
// submission time.
func (r *PasswordChangeRepo) FindByStatus(ctx context.Context, status string) ([]model.PasswordChangeRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+changeColumns+" FROM password_change_requests WHERE status=? ORDER BY created_at", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []model.PasswordChangeRequest
	for rows.Next() {
		req, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// Resolve transitions a PENDING request to the given terminal status,
// stamping the admin and resolution time. The WHERE clause guards the
// transition: it reports false when the request was already resolved,
// so a second resolution can never silently re-apply.
func (r *PasswordChangeRepo) Resolve(ctx context.Context, id, status, adminID string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE password_change_requests SET status=?, admin_id=?, updated_at=? WHERE id=? AND status=?",
		status, adminID, at, id, model.ChangeStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Approve transitions a PENDING request to APPROVED and overwrites the
// account's credential with the hash captured at submission, in one
// transaction. Either both writes land or neither does: a failed
// credential write rolls the status back to PENDING so the request can
// be resolved again. The conditional status UPDATE carries the same
// already-resolved guard as Resolve.
func (r *PasswordChangeRepo) Approve(ctx context.Context, id, adminID string, at time.Time, userID, passwordHash string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE password_change_requests SET status=?, admin_id=?, updated_at=? WHERE id=? AND status=?",
		model.ChangeStatusApproved, adminID, at, id, model.ChangeStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=? WHERE id=?",
		passwordHash, at, userID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func scanChange(row rowScanner) (model.PasswordChangeRequest, error) {
	var (
		req       model.PasswordChangeRequest
		adminID   sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(&req.ID, &req.UserID, &req.NewPasswordHash, &req.Status,
		&adminID, &req.CreatedAt, &updatedAt)
	if err != nil {
		return model.PasswordChangeRequest{}, err
	}
	if adminID.Valid {
		req.AdminID = &adminID.String
	}
	if updatedAt.Valid {
		req.UpdatedAt = &updatedAt.Time
	}
	return req, nil
}
