package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/etched-platform/etched-backend/internal/model"
)

type PoolRepo struct{ DB *sql.DB }

func NewPoolRepo(db *sql.DB) *PoolRepo { return &PoolRepo{DB: db} }

const poolColumns = "id,code,validator_id,name,description,tx_hash,is_active,created_at"

// Create inserts a pool and returns its id. ErrCodeExists signals a code
// collision that slipped past the pre-check; callers regenerate and retry.
func (r *PoolRepo) Create(ctx context.Context, code string, validatorID uint64, name string, description, txHash *string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO pools (code, validator_id, name, description, tx_hash) VALUES (?,?,?,?,?)",
		code, validatorID, name, description, txHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrCodeExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CodeExists reports whether a pool already uses the code.
func (r *PoolRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM pools WHERE code=?", code).Scan(&n)
	return n > 0, err
}

// GetByID fetches a pool by id.
func (r *PoolRepo) GetByID(ctx context.Context, id uint64) (model.Pool, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+poolColumns+" FROM pools WHERE id=? LIMIT 1", id))
}

// GetByCode fetches a pool by upper-cased code regardless of activation.
func (r *PoolRepo) GetByCode(ctx context.Context, code string) (model.Pool, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+poolColumns+" FROM pools WHERE code=? LIMIT 1", strings.ToUpper(code)))
}

// GetActiveByCode fetches an active pool by upper-cased code.
func (r *PoolRepo) GetActiveByCode(ctx context.Context, code string) (model.Pool, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+poolColumns+" FROM pools WHERE code=? AND is_active=true LIMIT 1", strings.ToUpper(code)))
}

// ListByValidator returns the validator's pools newest first.
func (r *PoolRepo) ListByValidator(ctx context.Context, validatorID uint64) ([]model.Pool, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+poolColumns+" FROM pools WHERE validator_id=? ORDER BY created_at DESC", validatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Pool
	for rows.Next() {
		var p model.Pool
		if err := rows.Scan(&p.ID, &p.Code, &p.ValidatorID, &p.Name, &p.Description, &p.TxHash, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetActive flips the activation flag.
func (r *PoolRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE pools SET is_active=? WHERE id=?", active, id)
	return err
}

// Count returns the total number of pools.
func (r *PoolRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM pools").Scan(&n)
	return n, err
}

func (r *PoolRepo) scanOne(row *sql.Row) (model.Pool, error) {
	var p model.Pool
	err := row.Scan(&p.ID, &p.Code, &p.ValidatorID, &p.Name, &p.Description, &p.TxHash, &p.IsActive, &p.CreatedAt)
	return p, err
}
