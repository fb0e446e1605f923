package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etched-platform/etched-backend/internal/model"
)

type fakeRegistry struct {
	approved map[string]bool
	err      error
}

func (f *fakeRegistry) ApprovedExistsForWallet(_ context.Context, address string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.approved[address], nil
}

func TestResolveAdminAllowList(t *testing.T) {
	r := NewRoleResolver(
		[]string{" 0xAB5801a7D398351b8bE11C439e05C5B3259aeC9B ", ""},
		&fakeRegistry{},
	)

	role, err := r.Resolve(context.Background(), "0xab5801a7d398351b8be11c439e05c5b3259aec9b")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)
}

func TestResolveApprovedValidator(t *testing.T) {
	addr := "0x52908400098527886e0f7030069857d2e4169ee7"
	r := NewRoleResolver(nil, &fakeRegistry{approved: map[string]bool{addr: true}})

	role, err := r.Resolve(context.Background(), "0x52908400098527886E0F7030069857D2E4169EE7")
	require.NoError(t, err)
	assert.Equal(t, model.RoleValidator, role)
}

func TestResolveDefaultsToCertificator(t *testing.T) {
	r := NewRoleResolver(nil, &fakeRegistry{})

	role, err := r.Resolve(context.Background(), "0x52908400098527886e0f7030069857d2e4169ee7")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCertificator, role)
}

// Admin wins over validator so a compromised registry row can never demote an
// allow-listed wallet; the lookup is not even consulted.
func TestResolveAdminSkipsRegistry(t *testing.T) {
	addr := "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	r := NewRoleResolver([]string{addr}, &fakeRegistry{err: errors.New("db down")})

	role, err := r.Resolve(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)
}

func TestResolveRegistryError(t *testing.T) {
	r := NewRoleResolver(nil, &fakeRegistry{err: errors.New("db down")})

	_, err := r.Resolve(context.Background(), "0x52908400098527886e0f7030069857d2e4169ee7")
	assert.Error(t, err)
}
