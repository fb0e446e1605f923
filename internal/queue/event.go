// Package queue defines message payloads exchanged over the message broker.
package queue

// CertificateMintedEvent is published when a validator approves a
// certificate and it transitions to minted. It carries enough for downstream
// indexers and notifiers to act without querying the primary database.
type CertificateMintedEvent struct {
	CertificateID   uint64 `json:"certificate_id"`
	PoolID          uint64 `json:"pool_id"`
	PoolCode        string `json:"pool_code"`
	ValidatorID     uint64 `json:"validator_id"`
	RecipientName   string `json:"recipient_name"`
	RecipientWallet string `json:"recipient_wallet"`
	DocumentHash    string `json:"document_hash"`
	TokenID         uint64 `json:"token_id"`
	TxHash          string `json:"tx_hash"`
	MintedAt        string `json:"minted_at"`
}
