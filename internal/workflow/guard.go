// Package workflow is the decision function handlers consult before writing.
// Each check takes the caller's identity plus entities already fetched by the
// handler and returns nil or one of the apierr kinds; it owns no persistence
// and mutates nothing. Credential-kind violations are bad requests (the
// client used the wrong login scheme), ownership violations are forbidden,
// and state-machine violations ("already processed", "pool inactive") are bad
// requests that leave the entity untouched.
package workflow

import (
	"github.com/etched-platform/etched-backend/internal/apierr"
	"github.com/etched-platform/etched-backend/internal/auth"
	"github.com/etched-platform/etched-backend/internal/model"
)

// CanRegister rejects registration attempts made under an admin session.
// Registration is otherwise open; id is nil for anonymous callers.
func CanRegister(id *auth.Identity) error {
	if id != nil && id.Role == model.RoleAdmin {
		return apierr.Forbidden()
	}
	return nil
}

// CanConnectWallet requires an email-credential session; wallet identities
// have nothing to link.
func CanConnectWallet(id *auth.Identity) error {
	if id.AuthType != auth.AuthTypeEmail {
		return apierr.BadRequest("Validators must use email login")
	}
	return nil
}

// CanDecideValidatorRequest gates the admin decision: email credential,
// admin role, and the request still pending. Terminal states are immutable.
func CanDecideValidatorRequest(id *auth.Identity, req model.ValidatorRequest) error {
	if id.AuthType != auth.AuthTypeEmail {
		return apierr.BadRequest("Admins must use email login")
	}
	if id.Role != model.RoleAdmin {
		return apierr.Forbidden()
	}
	if req.Status != model.RequestStatusPending {
		return apierr.BadRequest("Request already processed")
	}
	return nil
}

// CanCreatePool requires an email-credential validator holding an approved
// request and a linked wallet. approved is nil when the caller has no
// approved request.
func CanCreatePool(id *auth.Identity, approved *model.ValidatorRequest, owner model.User) error {
	if id.AuthType != auth.AuthTypeEmail {
		return apierr.BadRequest("Validators must use email login")
	}
	if approved == nil {
		return apierr.Forbidden()
	}
	if owner.WalletAddress == nil || *owner.WalletAddress == "" {
		return apierr.BadRequest("Please connect your wallet first")
	}
	return nil
}

// CanTogglePool allows only the owning validator to flip activation.
func CanTogglePool(id *auth.Identity, pool model.Pool) error {
	if id.AuthType != auth.AuthTypeEmail {
		return apierr.BadRequest("Validators must use email login")
	}
	uid, err := id.UserID()
	if err != nil {
		return apierr.Internal()
	}
	if pool.ValidatorID != uid {
		return apierr.Forbidden()
	}
	return nil
}

// CanSubmitCertificate requires a wallet credential and an active target
// pool. pool is nil when the code resolved to nothing active; the response
// does not distinguish missing from deactivated.
func CanSubmitCertificate(id *auth.Identity, pool *model.Pool) error {
	if id.AuthType != auth.AuthTypeWallet {
		return apierr.BadRequest("Certificators must use wallet login")
	}
	if pool == nil || !pool.IsActive {
		return apierr.BadRequest("Pool not found or inactive")
	}
	return nil
}

// CanDecideCertificate gates the minting decision: email credential, the
// certificate still pending, and the caller owning the pool it was submitted
// to. The pending check runs before ownership so a validator probing someone
// else's processed certificate learns nothing new from the error kind.
func CanDecideCertificate(id *auth.Identity, cert model.Certificate, pool model.Pool) error {
	if id.AuthType != auth.AuthTypeEmail {
		return apierr.BadRequest("Validators must use email login")
	}
	if cert.Status != model.CertStatusPending {
		return apierr.BadRequest("Certificate already processed")
	}
	uid, err := id.UserID()
	if err != nil {
		return apierr.Internal()
	}
	if pool.ValidatorID != uid {
		return apierr.Forbidden()
	}
	return nil
}

// CanListPoolCertificates allows the owning validator or an admin when the
// caller is email-credentialed; wallet callers may list freely (they can only
// see what they could submit to anyway).
func CanListPoolCertificates(id *auth.Identity, pool model.Pool) error {
	if id.AuthType != auth.AuthTypeEmail {
		return nil
	}
	if id.Role == model.RoleAdmin {
		return nil
	}
	uid, err := id.UserID()
	if err != nil {
		return apierr.Internal()
	}
	if pool.ValidatorID != uid {
		return apierr.Forbidden()
	}
	return nil
}
