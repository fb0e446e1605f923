package workflow

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etched-platform/etched-backend/internal/apierr"
	"github.com/etched-platform/etched-backend/internal/auth"
	"github.com/etched-platform/etched-backend/internal/model"
)

func emailIdentity(userID, role string) *auth.Identity {
	return &auth.Identity{Subject: userID, Role: role, AuthType: auth.AuthTypeEmail}
}

func walletIdentity(address, role string) *auth.Identity {
	return &auth.Identity{Subject: address, Role: role, AuthType: auth.AuthTypeWallet}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*apierr.Error)
	require.True(t, ok, "guard must return *apierr.Error, got %T", err)
	assert.Equal(t, status, apiErr.Status)
}

func TestCanRegister(t *testing.T) {
	assert.NoError(t, CanRegister(nil))
	assert.NoError(t, CanRegister(walletIdentity("0xabc", model.RoleCertificator)))
	assert.NoError(t, CanRegister(emailIdentity("7", model.RoleValidator)))

	assertStatus(t, CanRegister(emailIdentity("1", model.RoleAdmin)), http.StatusForbidden)
}

func TestCanConnectWallet(t *testing.T) {
	assert.NoError(t, CanConnectWallet(emailIdentity("7", model.RoleValidator)))

	assertStatus(t, CanConnectWallet(walletIdentity("0xabc", model.RoleCertificator)), http.StatusBadRequest)
}

func TestCanDecideValidatorRequest(t *testing.T) {
	pending := model.ValidatorRequest{Status: model.RequestStatusPending}

	assert.NoError(t, CanDecideValidatorRequest(emailIdentity("1", model.RoleAdmin), pending))

	assertStatus(t, CanDecideValidatorRequest(walletIdentity("0xabc", model.RoleAdmin), pending), http.StatusBadRequest)
	assertStatus(t, CanDecideValidatorRequest(emailIdentity("7", model.RoleValidator), pending), http.StatusForbidden)

	// Terminal states are immutable no matter who asks.
	for _, status := range []string{model.RequestStatusApproved, model.RequestStatusRejected} {
		decided := model.ValidatorRequest{Status: status}
		assertStatus(t, CanDecideValidatorRequest(emailIdentity("1", model.RoleAdmin), decided), http.StatusBadRequest)
	}
}

func TestCanCreatePool(t *testing.T) {
	wallet := "0x52908400098527886e0f7030069857d2e4169ee7"
	approved := &model.ValidatorRequest{Status: model.RequestStatusApproved}
	owner := model.User{ID: 7, WalletAddress: &wallet}

	assert.NoError(t, CanCreatePool(emailIdentity("7", model.RoleValidator), approved, owner))

	assertStatus(t, CanCreatePool(walletIdentity("0xabc", model.RoleCertificator), approved, owner), http.StatusBadRequest)
	assertStatus(t, CanCreatePool(emailIdentity("7", model.RoleValidator), nil, owner), http.StatusForbidden)

	empty := ""
	for _, u := range []model.User{{ID: 7}, {ID: 7, WalletAddress: &empty}} {
		assertStatus(t, CanCreatePool(emailIdentity("7", model.RoleValidator), approved, u), http.StatusBadRequest)
	}
}

func TestCanTogglePool(t *testing.T) {
	pool := model.Pool{ID: 3, ValidatorID: 7}

	assert.NoError(t, CanTogglePool(emailIdentity("7", model.RoleValidator), pool))

	assertStatus(t, CanTogglePool(emailIdentity("8", model.RoleValidator), pool), http.StatusForbidden)
	assertStatus(t, CanTogglePool(walletIdentity("0xabc", model.RoleCertificator), pool), http.StatusBadRequest)
}

func TestCanSubmitCertificate(t *testing.T) {
	active := &model.Pool{ID: 3, IsActive: true}
	inactive := &model.Pool{ID: 3, IsActive: false}
	certificator := walletIdentity("0xabc", model.RoleCertificator)

	assert.NoError(t, CanSubmitCertificate(certificator, active))

	assertStatus(t, CanSubmitCertificate(emailIdentity("7", model.RoleValidator), active), http.StatusBadRequest)
	assertStatus(t, CanSubmitCertificate(certificator, inactive), http.StatusBadRequest)
	assertStatus(t, CanSubmitCertificate(certificator, nil), http.StatusBadRequest)
}

func TestCanDecideCertificate(t *testing.T) {
	pool := model.Pool{ID: 3, ValidatorID: 7}
	pending := model.Certificate{ID: 9, PoolID: 3, Status: model.CertStatusPending}

	assert.NoError(t, CanDecideCertificate(emailIdentity("7", model.RoleValidator), pending, pool))

	assertStatus(t, CanDecideCertificate(walletIdentity("0xabc", model.RoleCertificator), pending, pool), http.StatusBadRequest)
	assertStatus(t, CanDecideCertificate(emailIdentity("8", model.RoleValidator), pending, pool), http.StatusForbidden)

	for _, status := range []string{model.CertStatusMinted, model.CertStatusRejected} {
		decided := model.Certificate{ID: 9, PoolID: 3, Status: status}
		assertStatus(t, CanDecideCertificate(emailIdentity("7", model.RoleValidator), decided, pool), http.StatusBadRequest)
	}
}

// The pending check outranks ownership so a non-owner probing a processed
// certificate sees the same error an owner would.
func TestCanDecideCertificateProcessedBeforeOwnership(t *testing.T) {
	pool := model.Pool{ID: 3, ValidatorID: 7}
	minted := model.Certificate{ID: 9, PoolID: 3, Status: model.CertStatusMinted}

	err := CanDecideCertificate(emailIdentity("8", model.RoleValidator), minted, pool)
	assertStatus(t, err, http.StatusBadRequest)
}

func TestCanListPoolCertificates(t *testing.T) {
	pool := model.Pool{ID: 3, ValidatorID: 7}

	assert.NoError(t, CanListPoolCertificates(emailIdentity("7", model.RoleValidator), pool))
	assert.NoError(t, CanListPoolCertificates(emailIdentity("1", model.RoleAdmin), pool))
	assert.NoError(t, CanListPoolCertificates(walletIdentity("0xabc", model.RoleCertificator), pool))

	assertStatus(t, CanListPoolCertificates(emailIdentity("8", model.RoleValidator), pool), http.StatusForbidden)
}
