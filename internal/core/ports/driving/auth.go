package driving

import (
	"context"

	"github.com/anota-labs/anota-core/internal/core/domain"
)

// AuthService handles authentication and account registration.
// Tokens are stateless JWTs; logout adds the token to a revocation list
// held in the cache until it would have expired anyway.
type AuthService interface {
	// Register creates an account and returns a login response for it.
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error)

	// Login validates credentials and issues a JWT.
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken validates a JWT and returns the auth context.
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// Logout revokes a token until its natural expiry.
	Logout(ctx context.Context, token string) error
}
