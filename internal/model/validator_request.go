package model

import "time"

// Validator request statuses. A request is created pending at registration
// and transitions exactly once to approved or rejected by an admin decision.
// Terminal states are immutable.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// ValidatorRequest represents a row in the `validator_requests` table. It
// records an institution's application to become a certificate validator and
// the admin's review decision.
type ValidatorRequest struct {
	ID              uint64     `json:"id"`
	UserID          uint64     `json:"user_id"`
	InstitutionName string     `json:"institution_name"`
	InstitutionID   string     `json:"institution_id"`
	DocumentURL     *string    `json:"document_url"`
	Status          string     `json:"status"`
	ReviewedBy      *uint64    `json:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
}
