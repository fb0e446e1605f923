package model

import "time"

// Certificate statuses. pending → minted (approve) or pending → rejected;
// no transition leaves a terminal state.
const (
	CertStatusPending  = "pending"
	CertStatusRejected = "rejected"
	CertStatusMinted   = "minted"
)

// Certificate represents a row in the `certificates` table. A certificator
// wallet submits it into a pool; the pool's validator decides it. On approval
// it acquires an immutable token id and transaction hash. The document hash
// is unique across all certificates for all time.
type Certificate struct {
	ID                 uint64     `json:"id"`
	PoolID             uint64     `json:"pool_id"`
	CertificatorWallet string     `json:"certificator_wallet"`
	RecipientName      string     `json:"recipient_name"`
	RecipientWallet    string     `json:"recipient_wallet"`
	CertificateType    string     `json:"certificate_type"`
	DocumentHash       string     `json:"document_hash"`
	MetadataURI        *string    `json:"metadata_uri"`
	Status             string     `json:"status"`
	TokenID            *uint64    `json:"token_id"`
	TxHash             *string    `json:"tx_hash"`
	ValidatedAt        *time.Time `json:"validated_at"`
	MintedAt           *time.Time `json:"minted_at"`
	RejectionReason    *string    `json:"rejection_reason"`
	CreatedAt          time.Time  `json:"created_at"`
}
