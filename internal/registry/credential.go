package registry

import (
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
)

// A short-lived registry session credential.
//
// Minted by the authenticator immediately before use and never persisted.
// The secret is opaque; it expires independently of pipeline progress, so
// callers must check Expired before relying on it.
type Credential struct {
	Username  string    // Registry username; always "AWS" for ECR tokens.
	Secret    string    // Opaque authorization token.
	IssuedAt  time.Time // When the credential was minted.
	ExpiresAt time.Time // When the registry stops accepting the credential.
}

// Reports whether the credential is no longer valid at the given time.
//
// A zero ExpiresAt is treated as already expired; a credential without a
// known lifetime must not be trusted for a push.
func (c Credential) Expired(now time.Time) bool {
	return c.ExpiresAt.IsZero() || !now.Before(c.ExpiresAt)
}

// Returns the credential as a basic authenticator for registry transport.
func (c Credential) Basic() authn.Authenticator {
	return &authn.Basic{
		Username: c.Username,
		Password: c.Secret,
	}
}
