package model

import "time"

// Account roles. Role is fixed at creation: email registrations are always
// validators, the admin account is seeded out-of-band. Wallet identities
// never have a user row unless a validator linked the wallet.
const (
	RoleAdmin        = "admin"
	RoleValidator    = "validator"
	RoleCertificator = "certificator"
)

// User represents a row in the `users` table. Only email/password principals
// are persisted here; pure wallet principals (certificators) exist solely as
// addresses on certificates.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique, stored lowercase.
//  PasswordHash  – bcrypt hashed password, never serialized.
//  Username      – display name.
//  Role          – "admin" or "validator".
//  WalletAddress – optional linked wallet, lowercase 0x-hex, unique when set.
//  CreatedAt     – timestamp of creation.
type User struct {
	ID            uint64    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	WalletAddress *string   `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}
