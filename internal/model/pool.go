package model

import "time"

// Pool represents a row in the `pools` table: a validator-owned issuance
// channel identified by a short shareable code. Certificates are submitted
// against a pool's code while the pool is active.
type Pool struct {
	ID          uint64    `json:"id"`
	Code        string    `json:"code"`
	ValidatorID uint64    `json:"validator_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	TxHash      *string   `json:"tx_hash"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
