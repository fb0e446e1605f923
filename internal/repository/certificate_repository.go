package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/etched-platform/etched-backend/internal/model"
)

type CertificateRepo struct{ DB *sql.DB }

func NewCertificateRepo(db *sql.DB) *CertificateRepo { return &CertificateRepo{DB: db} }

const certColumns = "id,pool_id,certificator_wallet,recipient_name,recipient_wallet,certificate_type,document_hash,metadata_uri,status,token_id,tx_hash,validated_at,minted_at,rejection_reason,created_at"

// Create inserts a pending certificate and returns its id. The unique key on
// document_hash enforces global hash uniqueness; a collision surfaces as
// ErrHashExists.
func (r *CertificateRepo) Create(ctx context.Context, c *model.Certificate) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO certificates
		 (pool_id, certificator_wallet, recipient_name, recipient_wallet, certificate_type, document_hash, metadata_uri)
		 VALUES (?,?,?,?,?,?,?)`,
		c.PoolID, strings.ToLower(c.CertificatorWallet), c.RecipientName,
		strings.ToLower(c.RecipientWallet), c.CertificateType, c.DocumentHash, c.MetadataURI)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrHashExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// HashExists reports whether any certificate already carries the hash.
func (r *CertificateRepo) HashExists(ctx context.Context, hash string) (bool, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM certificates WHERE document_hash=?", hash).Scan(&n)
	return n > 0, err
}

// GetByID fetches a certificate by id.
func (r *CertificateRepo) GetByID(ctx context.Context, id uint64) (model.Certificate, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+certColumns+" FROM certificates WHERE id=? LIMIT 1", id))
}

// GetMintedByHash fetches the minted certificate carrying the hash, for
// public verification.
func (r *CertificateRepo) GetMintedByHash(ctx context.Context, hash string) (model.Certificate, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+certColumns+" FROM certificates WHERE document_hash=? AND status=? LIMIT 1",
		hash, model.CertStatusMinted))
}

// ListByPool returns the pool's certificates newest first, optionally
// filtered by status.
func (r *CertificateRepo) ListByPool(ctx context.Context, poolID uint64, status string) ([]model.Certificate, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status != "" {
		rows, err = r.DB.QueryContext(ctx,
			"SELECT "+certColumns+" FROM certificates WHERE pool_id=? AND status=? ORDER BY created_at DESC",
			poolID, status)
	} else {
		rows, err = r.DB.QueryContext(ctx,
			"SELECT "+certColumns+" FROM certificates WHERE pool_id=? ORDER BY created_at DESC", poolID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

// ListByCertificator returns a wallet's submissions newest first.
func (r *CertificateRepo) ListByCertificator(ctx context.Context, wallet string) ([]model.Certificate, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+certColumns+" FROM certificates WHERE certificator_wallet=? ORDER BY created_at DESC",
		strings.ToLower(wallet))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

// Mint moves a pending certificate to minted, recording the chain reference
// and timestamps in one atomic row update. The WHERE clause re-checks
// pending status; no rows affected means it was already processed.
func (r *CertificateRepo) Mint(ctx context.Context, id uint64, txHash string, tokenID uint64) (bool, error) {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE certificates SET status=?, tx_hash=?, token_id=?, validated_at=?, minted_at=? WHERE id=? AND status=?",
		model.CertStatusMinted, txHash, tokenID, now, now, id, model.CertStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Reject moves a pending certificate to rejected with an optional reason,
// under the same already-processed protection as Mint.
func (r *CertificateRepo) Reject(ctx context.Context, id uint64, reason *string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE certificates SET status=?, rejection_reason=?, validated_at=? WHERE id=? AND status=?",
		model.CertStatusRejected, reason, time.Now().UTC(), id, model.CertStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByPoolStatus returns how many of the pool's certificates carry the
// status.
func (r *CertificateRepo) CountByPoolStatus(ctx context.Context, poolID uint64, status string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM certificates WHERE pool_id=? AND status=?", poolID, status).Scan(&n)
	return n, err
}

// CountMinted returns the platform-wide minted total.
func (r *CertificateRepo) CountMinted(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM certificates WHERE status=?", model.CertStatusMinted).Scan(&n)
	return n, err
}

func (r *CertificateRepo) scanOne(row *sql.Row) (model.Certificate, error) {
	var c model.Certificate
	err := row.Scan(&c.ID, &c.PoolID, &c.CertificatorWallet, &c.RecipientName, &c.RecipientWallet,
		&c.CertificateType, &c.DocumentHash, &c.MetadataURI, &c.Status, &c.TokenID, &c.TxHash,
		&c.ValidatedAt, &c.MintedAt, &c.RejectionReason, &c.CreatedAt)
	return c, err
}

func (r *CertificateRepo) collect(rows *sql.Rows) ([]model.Certificate, error) {
	var out []model.Certificate
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ID, &c.PoolID, &c.CertificatorWallet, &c.RecipientName, &c.RecipientWallet,
			&c.CertificateType, &c.DocumentHash, &c.MetadataURI, &c.Status, &c.TokenID, &c.TxHash,
			&c.ValidatedAt, &c.MintedAt, &c.RejectionReason, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
