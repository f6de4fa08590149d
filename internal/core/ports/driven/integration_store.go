package driven

import (
	"context"
	"time"

	"github.com/anota-labs/anota-core/internal/core/domain"
)

// IntegrationStore persists Google integration records (PostgreSQL).
// The record is keyed by user id: at most one per user, writes overwrite
// in place.
type IntegrationStore interface {
	// GetByUser retrieves the active integration for a user.
	// Returns domain.ErrNotFound when the user is not connected.
	GetByUser(ctx context.Context, userID string) (*domain.GoogleIntegration, error)

	// Upsert inserts the record if absent, otherwise overwrites it.
	// Called on every successful token exchange.
	Upsert(ctx context.Context, integration *domain.GoogleIntegration) error

	// UpdateTokens persists a refreshed access token and its expiry.
	// The refresh token is deliberately left untouched.
	UpdateTokens(ctx context.Context, userID, accessToken string, expiresAt time.Time) error

	// Deactivate marks the integration as disconnected.
	Deactivate(ctx context.Context, userID string) error
}
