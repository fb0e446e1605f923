package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/etched-platform/etched-backend/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,username,role,wallet_address,created_at"

// Create inserts a user and returns its id. The email is normalized to
// lowercase before insert.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, username, role string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, username, role) VALUES (?,?,?,?)",
		email, passwordHash, username, role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByWallet fetches the user linked to a lowercase wallet address.
func (r *UserRepo) GetByWallet(ctx context.Context, address string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE wallet_address=? LIMIT 1", strings.ToLower(address)))
}

// UpdateWallet links a wallet address to the user. The address must already
// be validated and lowercased by the caller; the unique key on
// wallet_address rejects linking one wallet to two accounts.
func (r *UserRepo) UpdateWallet(ctx context.Context, id uint64, address string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET wallet_address=? WHERE id=?", strings.ToLower(address), id)
	if isDuplicate(err) {
		return ErrWalletLinked
	}
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Username, &u.Role, &u.WalletAddress, &u.CreatedAt)
	return u, err
}
