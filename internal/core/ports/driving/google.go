package driving

import (
	"context"

	"github.com/anota-labs/anota-core/internal/core/domain"
)

// GoogleTasksService manages the per-user Google Tasks integration: the
// OAuth2 consent flow, token refresh, and task operations against the
// remote API.
type GoogleTasksService interface {
	// GetAuthorizationURL builds the consent URL that starts the OAuth
	// flow for a user. No side effects.
	GetAuthorizationURL(userID string) string

	// ExchangeCode completes the OAuth callback: validates the state
	// against the caller, exchanges the code for tokens, and upserts the
	// integration record.
	ExchangeCode(ctx context.Context, code, state, callerUserID string) error

	// GetConnectionStatus reports whether the user is connected and, if
	// so, the connected Google account's email.
	GetConnectionStatus(ctx context.Context, userID string) (*ConnectionStatus, error)

	// Disconnect deactivates the user's integration.
	Disconnect(ctx context.Context, userID string) error

	// GetTaskLists enumerates the user's remote task lists.
	// Returns an empty slice when the user is not connected.
	GetTaskLists(ctx context.Context, userID string) ([]domain.GoogleTaskList, error)

	// GetTasks fetches tasks across all lists, or just listID when it is
	// non-empty. A failure fetching one list skips that list; tasks from
	// the remaining lists are still returned.
	GetTasks(ctx context.Context, userID, listID string) ([]domain.GoogleTask, error)

	// SetTaskCompletion marks a task complete or incomplete.
	SetTaskCompletion(ctx context.Context, userID, listID, taskID string, completed bool) error

	// UpdateTask updates a task's title and due date. An empty due clears
	// the remote field.
	UpdateTask(ctx context.Context, userID, listID, taskID, title, due string) error

	// DeleteTask deletes a remote task.
	DeleteTask(ctx context.Context, userID, listID, taskID string) error
}

// ConnectionStatus is the integration state exposed to the frontend.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Email     string `json:"email,omitempty"`
}

// IntegrationError represents an OAuth integration failure with a stable
// machine-readable code and a human-readable description. The description
// may carry the remote-supplied message where safe to expose.
type IntegrationError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *IntegrationError) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}

// Common integration errors
var (
	// ErrInvalidState is returned when the round-tripped state parameter
	// is malformed or does not decode to the calling user.
	ErrInvalidState = &IntegrationError{Code: "invalid_state", Description: "the state parameter is invalid or does not match the caller"}

	// ErrMissingRefreshToken is returned when neither the token response
	// nor the stored record carries a refresh token. The user must
	// disconnect and reconnect to force Google to reissue one.
	ErrMissingRefreshToken = &IntegrationError{Code: "missing_refresh_token", Description: "no refresh token received; disconnect and reconnect the integration"}
)

// NewExchangeError wraps a remote token-exchange failure.
func NewExchangeError(description string) *IntegrationError {
	return &IntegrationError{Code: "exchange_failed", Description: description}
}
