package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/notifier"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// PasswordChangeService owns the credential change state machine:
//
//	        submit (valid current password)        admin approve
//	 [none] ──────────────────────────────► PENDING ─────────────► APPROVED
//	                                           │
//	                                           │ admin reject
//	                                           ▼
//	                                        REJECTED
//
// Both terminal states are final. The proposed credential is hashed at
// submission time and approval applies exactly that hash, regardless
// of profile changes made in the interim.
type PasswordChangeService struct {
	Users      UserStore
	Requests   ChangeRequestStore
	Notify     notifier.Notifier
	BcryptCost int
}

func NewPasswordChangeService(users UserStore, requests ChangeRequestStore, n notifier.Notifier, bcryptCost int) *PasswordChangeService {
	return &PasswordChangeService{Users: users, Requests: requests, Notify: n, BcryptCost: bcryptCost}
}

// Request submits a credential change for the given account after
// re-authenticating with the current password. At most one PENDING
// request exists per account: the pending lookup enforces that
// explicitly and the store's unique index closes the race between two
// concurrent submissions.
func (s *PasswordChangeService) Request(ctx context.Context, userID, oldPassword, newPassword, authorization string) (model.PasswordChangeRequest, Warning, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return model.PasswordChangeRequest{}, "", asNotFoundWf("request change", userID, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
		return model.PasswordChangeRequest{}, "", ErrInvalidCredentials
	}

	if _, err := s.Requests.FindPendingByUserID(ctx, userID); err == nil {
		return model.PasswordChangeRequest{}, "", repository.ErrPendingExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("workflow: pending lookup failed for %s: %v", userID, err)
		return model.PasswordChangeRequest{}, "", fmt.Errorf("request change: %w", err)
	}

	hash, err := utils.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return model.PasswordChangeRequest{}, "", fmt.Errorf("request change: %w", err)
	}
	req := model.PasswordChangeRequest{UserID: userID, NewPasswordHash: hash}
	if err := s.Requests.Create(ctx, &req); err != nil {
		if errors.Is(err, repository.ErrPendingExists) {
			return model.PasswordChangeRequest{}, "", err
		}
		log.Printf("workflow: request insert failed for %s: %v", userID, err)
		return model.PasswordChangeRequest{}, "", fmt.Errorf("request change: %w", err)
	}

	warn := s.send(ctx, notifier.Notification{
		Category:      notifier.CategoryPasswordRequested,
		Recipient:     u.Email,
		Subject:       "Password change requested",
		Message:       "Your password change request is pending approval",
		Authorization: authorization,
	}, "request submitted, but the pending-approval notification could not be sent")
	return req, warn, nil
}

// Resolve applies an admin decision to a request. Approval overwrites
// the account's credential with the hash captured at submission time
// and marks the request APPROVED in the same store transaction, so a
// failed credential write leaves the request PENDING and resolvable
// again; rejection marks it REJECTED and leaves the credential
// untouched. The transition is guarded by a conditional update, so
// resolving an already-resolved request fails with ErrInvalidState
// instead of silently re-applying.
func (s *PasswordChangeService) Resolve(ctx context.Context, requestID, adminID string, approved bool, authorization string) (model.PasswordChangeRequest, Warning, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return model.PasswordChangeRequest{}, "", asNotFoundWf("resolve", requestID, err)
	}

	admin, err := s.Users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PasswordChangeRequest{}, "", ErrForbidden
		}
		log.Printf("workflow: admin lookup failed for %s: %v", adminID, err)
		return model.PasswordChangeRequest{}, "", fmt.Errorf("resolve: %w", err)
	}
	if !admin.IsAdmin() {
		return model.PasswordChangeRequest{}, "", ErrForbidden
	}
	if req.Resolved() {
		return model.PasswordChangeRequest{}, "", ErrInvalidState
	}

	status := model.ChangeStatusRejected
	now := time.Now().UTC()
	var won bool
	if approved {
		status = model.ChangeStatusApproved
		won, err = s.Requests.Approve(ctx, req.ID, adminID, now, req.UserID, req.NewPasswordHash)
	} else {
		won, err = s.Requests.Resolve(ctx, req.ID, status, adminID, now)
	}
	if err != nil {
		// Nothing was applied; the request is still PENDING and can be
		// resolved again.
		log.Printf("workflow: resolve update failed for %s: %v", req.ID, err)
		return model.PasswordChangeRequest{}, "", fmt.Errorf("resolve: %w", err)
	}
	if !won {
		// Another resolution got there first.
		return model.PasswordChangeRequest{}, "", ErrInvalidState
	}
	req.Status = status
	req.AdminID = &adminID
	req.UpdatedAt = &now

	warn := s.notifyResolution(ctx, req, approved, authorization)
	return req, warn, nil
}

// ListPending returns every PENDING request enriched with the
// requester's name and email. When the owning account has been deleted
// the user fields stay empty rather than failing the listing.
func (s *PasswordChangeService) ListPending(ctx context.Context) ([]model.PendingChangeView, error) {
	reqs, err := s.Requests.FindByStatus(ctx, model.ChangeStatusPending)
	if err != nil {
		log.Printf("workflow: pending listing failed: %v", err)
		return nil, fmt.Errorf("list pending: %w", err)
	}
	views := make([]model.PendingChangeView, 0, len(reqs))
	for _, req := range reqs {
		view := model.PendingChangeView{Request: req}
		if u, err := s.Users.GetByID(ctx, req.UserID); err == nil {
			view.UserFirstName = u.FirstName
			view.UserLastName = u.LastName
			view.UserEmail = u.Email
		}
		views = append(views, view)
	}
	return views, nil
}

// PendingForUser returns the single PENDING request for an account;
// ok is false when there is none.
func (s *PasswordChangeService) PendingForUser(ctx context.Context, userID string) (model.PasswordChangeRequest, bool, error) {
	req, err := s.Requests.FindPendingByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PasswordChangeRequest{}, false, nil
		}
		log.Printf("workflow: pending lookup failed for %s: %v", userID, err)
		return model.PasswordChangeRequest{}, false, fmt.Errorf("pending for user: %w", err)
	}
	return req, true, nil
}

func (s *PasswordChangeService) notifyResolution(ctx context.Context, req model.PasswordChangeRequest, approved bool, authorization string) Warning {
	u, err := s.Users.GetByID(ctx, req.UserID)
	if err != nil {
		log.Printf("workflow: recipient lookup failed for %s: %v", req.UserID, err)
		return "request resolved, but the outcome notification could not be sent"
	}
	n := notifier.Notification{
		Category:      notifier.CategoryPasswordRejected,
		Recipient:     u.Email,
		Subject:       "Password change rejected",
		Message:       "Your password reset request has been rejected.",
		Authorization: authorization,
	}
	if approved {
		n.Category = notifier.CategoryPasswordApproved
		n.Subject = "Password change approved"
		n.Message = "Your password reset request has been approved."
	}
	return s.send(ctx, n, "request resolved, but the outcome notification could not be sent")
}

func (s *PasswordChangeService) send(ctx context.Context, n notifier.Notification, warn string) Warning {
	if err := s.Notify.Send(ctx, n); err != nil {
		log.Printf("workflow: %s notification failed for %s: %v", n.Category, n.Recipient, err)
		return Warning(warn)
	}
	return ""
}

func asNotFoundWf(op, target string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	log.Printf("workflow: %s failed for %s: %v", op, target, err)
	return fmt.Errorf("%s: %w", op, err)
}
