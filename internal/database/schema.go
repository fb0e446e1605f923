package database

import (
	"context"
	"database/sql"

	"github.com/etched-platform/etched-backend/internal/utils"
)

// schema creates the four tables the service owns. Uniqueness that the core
// relies on lives here: users.email, users.wallet_address, pools.code and
// certificates.document_hash.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		username VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'validator',
		wallet_address VARCHAR(42) NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS validator_requests (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		institution_name VARCHAR(255) NOT NULL,
		institution_id VARCHAR(100) NOT NULL,
		document_url TEXT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		reviewed_by BIGINT UNSIGNED NULL,
		reviewed_at DATETIME NULL,
		rejection_reason TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_requests_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS pools (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		code VARCHAR(20) NOT NULL UNIQUE,
		validator_id BIGINT UNSIGNED NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NULL,
		tx_hash VARCHAR(66) NULL,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_pools_validator FOREIGN KEY (validator_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS certificates (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		pool_id BIGINT UNSIGNED NOT NULL,
		certificator_wallet VARCHAR(42) NOT NULL,
		recipient_name VARCHAR(255) NOT NULL,
		recipient_wallet VARCHAR(42) NOT NULL,
		certificate_type VARCHAR(100) NOT NULL,
		document_hash VARCHAR(66) NOT NULL UNIQUE,
		metadata_uri TEXT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		token_id BIGINT UNSIGNED NULL,
		tx_hash VARCHAR(66) NULL,
		validated_at DATETIME NULL,
		minted_at DATETIME NULL,
		rejection_reason TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_certs_pool FOREIGN KEY (pool_id) REFERENCES pools(id) ON DELETE CASCADE
	)`,
}

// CreateSchema creates the tables when they do not exist yet.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin inserts the admin account when no user carries the email yet.
// password empty disables seeding.
func SeedAdmin(ctx context.Context, db *sql.DB, email, password string, cost int) error {
	if password == "" {
		return nil
	}
	var n int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email=?", email).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, username, role) VALUES (?,?,?,?)",
		email, hash, "admin", "admin")
	return err
}
