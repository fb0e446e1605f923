package auth

import (
	"context"
	"strings"

	"github.com/etched-platform/etched-backend/internal/model"
)

// ValidatorRegistry is the slice of persistence the resolver needs: whether
// any approved validator request is reachable from a wallet address.
type ValidatorRegistry interface {
	ApprovedExistsForWallet(ctx context.Context, address string) (bool, error)
}

// RoleResolver derives the authorization role for a wallet principal at
// token-issuance time. The result is baked into the token and trusted for
// its lifetime; approval changes take effect at the next login.
type RoleResolver struct {
	admins   map[string]bool
	registry ValidatorRegistry
}

// NewRoleResolver builds a resolver from the configured admin wallet
// allow-list. Addresses are folded to lowercase.
func NewRoleResolver(adminWallets []string, registry ValidatorRegistry) *RoleResolver {
	admins := make(map[string]bool, len(adminWallets))
	for _, a := range adminWallets {
		a = lowercase(strings.TrimSpace(a))
		if a != "" {
			admins[a] = true
		}
	}
	return &RoleResolver{admins: admins, registry: registry}
}

// Resolve returns the role for a lowercase wallet address: admin when the
// address is allow-listed, validator when an approved request is linked to
// it, otherwise certificator. Certificator is the ungated default — every
// wallet that can produce a valid signature is at minimum a certificator.
func (r *RoleResolver) Resolve(ctx context.Context, address string) (string, error) {
	address = lowercase(address)
	if r.admins[address] {
		return model.RoleAdmin, nil
	}
	approved, err := r.registry.ApprovedExistsForWallet(ctx, address)
	if err != nil {
		return "", err
	}
	if approved {
		return model.RoleValidator, nil
	}
	return model.RoleCertificator, nil
}
