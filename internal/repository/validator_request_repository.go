package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/etched-platform/etched-backend/internal/model"
)

type ValidatorRequestRepo struct{ DB *sql.DB }

func NewValidatorRequestRepo(db *sql.DB) *ValidatorRequestRepo {
	return &ValidatorRequestRepo{DB: db}
}

const requestColumns = "id,user_id,institution_name,institution_id,document_url,status,reviewed_by,reviewed_at,rejection_reason,created_at"

// Create inserts a pending request for the user and returns its id.
func (r *ValidatorRequestRepo) Create(ctx context.Context, userID uint64, institutionName, institutionID string, documentURL *string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO validator_requests (user_id, institution_name, institution_id, document_url, status) VALUES (?,?,?,?,?)",
		userID, institutionName, institutionID, documentURL, model.RequestStatusPending)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a request by id.
func (r *ValidatorRequestRepo) GetByID(ctx context.Context, id uint64) (model.ValidatorRequest, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM validator_requests WHERE id=? LIMIT 1", id))
}

// GetByUser fetches the user's request regardless of status.
func (r *ValidatorRequestRepo) GetByUser(ctx context.Context, userID uint64) (model.ValidatorRequest, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM validator_requests WHERE user_id=? ORDER BY created_at DESC LIMIT 1", userID))
}

// ApprovedByUser fetches the user's approved request, sql.ErrNoRows when the
// user has none.
func (r *ValidatorRequestRepo) ApprovedByUser(ctx context.Context, userID uint64) (model.ValidatorRequest, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM validator_requests WHERE user_id=? AND status=? LIMIT 1",
		userID, model.RequestStatusApproved))
}

// ListPending returns pending requests oldest first, for the admin review
// queue.
func (r *ValidatorRequestRepo) ListPending(ctx context.Context) ([]model.ValidatorRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM validator_requests WHERE status=? ORDER BY created_at ASC",
		model.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

// Decide records an admin decision in a single row update. The WHERE clause
// re-checks pending status so a concurrent decision cannot overwrite a
// terminal state; no rows affected means the request was already processed.
func (r *ValidatorRequestRepo) Decide(ctx context.Context, id, reviewerID uint64, status string, reason *string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE validator_requests SET status=?, reviewed_by=?, reviewed_at=?, rejection_reason=? WHERE id=? AND status=?",
		status, reviewerID, time.Now().UTC(), reason, id, model.RequestStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ApprovedExistsForWallet reports whether an approved request belongs to the
// account linked to the given wallet address. This is the validator-registry
// lookup the role resolver uses at wallet login.
func (r *ValidatorRequestRepo) ApprovedExistsForWallet(ctx context.Context, address string) (bool, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM validator_requests vr
		 JOIN users u ON u.id = vr.user_id
		 WHERE vr.status=? AND u.wallet_address=?`,
		model.RequestStatusApproved, strings.ToLower(address)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByStatus returns how many requests carry the given status.
func (r *ValidatorRequestRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM validator_requests WHERE status=?", status).Scan(&n)
	return n, err
}

// ListApprovedValidators returns approved validator users joined with their
// approved request, for the admin directory.
func (r *ValidatorRequestRepo) ListApprovedValidators(ctx context.Context) ([]model.User, []model.ValidatorRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id,u.email,u.password_hash,u.username,u.role,u.wallet_address,u.created_at,
		        vr.id,vr.user_id,vr.institution_name,vr.institution_id,vr.document_url,vr.status,
		        vr.reviewed_by,vr.reviewed_at,vr.rejection_reason,vr.created_at
		 FROM users u
		 JOIN validator_requests vr ON vr.user_id = u.id
		 WHERE u.role=? AND vr.status=?`,
		model.RoleValidator, model.RequestStatusApproved)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var users []model.User
	var reqs []model.ValidatorRequest
	for rows.Next() {
		var u model.User
		var vr model.ValidatorRequest
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Username, &u.Role, &u.WalletAddress, &u.CreatedAt,
			&vr.ID, &vr.UserID, &vr.InstitutionName, &vr.InstitutionID, &vr.DocumentURL, &vr.Status,
			&vr.ReviewedBy, &vr.ReviewedAt, &vr.RejectionReason, &vr.CreatedAt); err != nil {
			return nil, nil, err
		}
		users = append(users, u)
		reqs = append(reqs, vr)
	}
	return users, reqs, rows.Err()
}

func (r *ValidatorRequestRepo) scanOne(row *sql.Row) (model.ValidatorRequest, error) {
	var vr model.ValidatorRequest
	err := row.Scan(&vr.ID, &vr.UserID, &vr.InstitutionName, &vr.InstitutionID, &vr.DocumentURL,
		&vr.Status, &vr.ReviewedBy, &vr.ReviewedAt, &vr.RejectionReason, &vr.CreatedAt)
	return vr, err
}

func (r *ValidatorRequestRepo) collect(rows *sql.Rows) ([]model.ValidatorRequest, error) {
	var out []model.ValidatorRequest
	for rows.Next() {
		var vr model.ValidatorRequest
		if err := rows.Scan(&vr.ID, &vr.UserID, &vr.InstitutionName, &vr.InstitutionID, &vr.DocumentURL,
			&vr.Status, &vr.ReviewedBy, &vr.ReviewedAt, &vr.RejectionReason, &vr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, vr)
	}
	return out, rows.Err()
}
