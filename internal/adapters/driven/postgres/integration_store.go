package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anota-labs/anota-core/internal/core/domain"
	"github.com/anota-labs/anota-core/internal/core/ports/driven"
)

// Ensure IntegrationStore implements the driven port
var _ driven.IntegrationStore = (*IntegrationStore)(nil)

// IntegrationStore is a PostgreSQL implementation of the IntegrationStore port
type IntegrationStore struct {
	db *DB
}

// NewIntegrationStore creates a new PostgreSQL integration store
func NewIntegrationStore(db *DB) *IntegrationStore {
	return &IntegrationStore{db: db}
}

// GetByUser retrieves the active Google integration for a user.
// Returns domain.ErrNotFound when the user has no active integration.
func (s *IntegrationStore) GetByUser(ctx context.Context, userID string) (*domain.GoogleIntegration, error) {
	query := `
		SELECT id, user_id, access_token, refresh_token, token_expires_at,
		       google_user_id, google_email, google_name, active, connected_at, updated_at
		FROM google_integrations
		WHERE user_id = $1 AND active = TRUE`

	var integ domain.GoogleIntegration
	var googleUserID, googleEmail, googleName sql.NullString

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&integ.ID,
		&integ.UserID,
		&integ.AccessToken,
		&integ.RefreshToken,
		&integ.TokenExpiresAt,
		&googleUserID,
		&googleEmail,
		&googleName,
		&integ.Active,
		&integ.ConnectedAt,
		&integ.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan integration: %w", err)
	}

	integ.GoogleUserID = StringValue(googleUserID)
	integ.GoogleEmail = StringValue(googleEmail)
	integ.GoogleName = StringValue(googleName)
	return &integ, nil
}

// Upsert creates or replaces the integration for the record's user.
// Reconnecting overwrites tokens and profile data and reactivates the row.
func (s *IntegrationStore) Upsert(ctx context.Context, integ *domain.GoogleIntegration) error {
	query := `
		INSERT INTO google_integrations (id, user_id, access_token, refresh_token, token_expires_at,
			google_user_id, google_email, google_name, active, connected_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			google_user_id = EXCLUDED.google_user_id,
			google_email = EXCLUDED.google_email,
			google_name = EXCLUDED.google_name,
			active = EXCLUDED.active,
			connected_at = EXCLUDED.connected_at,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		integ.ID,
		integ.UserID,
		integ.AccessToken,
		integ.RefreshToken,
		integ.TokenExpiresAt,
		NullString(integ.GoogleUserID),
		NullString(integ.GoogleEmail),
		NullString(integ.GoogleName),
		integ.Active,
		integ.ConnectedAt,
		integ.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert integration: %w", err)
	}
	return nil
}

// UpdateTokens replaces the access token and expiry after a refresh.
// The stored refresh token is left untouched.
func (s *IntegrationStore) UpdateTokens(ctx context.Context, userID, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE google_integrations
		SET access_token = $2, token_expires_at = $3, updated_at = $4
		WHERE user_id = $1 AND active = TRUE`

	result, err := s.db.ExecContext(ctx, query, userID, accessToken, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate disconnects the integration without deleting the row
func (s *IntegrationStore) Deactivate(ctx context.Context, userID string) error {
	query := `
		UPDATE google_integrations
		SET active = FALSE, updated_at = $2
		WHERE user_id = $1 AND active = TRUE`

	result, err := s.db.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to deactivate integration: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
