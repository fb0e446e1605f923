// Package repository implements persistence over database/sql. Sentinel
// errors defined here let handlers distinguish uniqueness violations from
// ordinary storage failures without parsing driver errors themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when an insert collides with the unique email
// key on users.
var ErrEmailExists = errors.New("email already exists")

// ErrWalletLinked is returned when a wallet address is already linked to a
// different account.
var ErrWalletLinked = errors.New("wallet already linked")

// ErrCodeExists is returned when a pool insert collides with the unique code
// key. Callers regenerate the code and retry.
var ErrCodeExists = errors.New("pool code already exists")

// ErrHashExists is returned when a certificate insert collides with the
// unique document hash key.
var ErrHashExists = errors.New("document hash already exists")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
