package driven

import "github.com/anota-labs/anota-core/internal/core/domain"

// AuthAdapter handles authentication cryptographic operations.
// This does NOT handle storage or revocation - revoked tokens are tracked
// through the Cache.
type AuthAdapter interface {
	// Password operations
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool

	// Token operations
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
