package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/anota-labs/anota-core/internal/core/domain"
	"github.com/anota-labs/anota-core/internal/core/ports/driven"
	"github.com/anota-labs/anota-core/internal/core/ports/driving"
)

// Ensure googleTasksService implements GoogleTasksService
var _ driving.GoogleTasksService = (*googleTasksService)(nil)

const (
	// googleTimeLayout is the RFC3339 millisecond form the Tasks API
	// expects for timestamps.
	googleTimeLayout = "2006-01-02T15:04:05.000Z"

	// defaultTokenLifetime is assumed when the refresh response omits
	// expires_in.
	defaultTokenLifetime = 3600 * time.Second

	// untitledListName substitutes for lists the remote returns without
	// a title.
	untitledListName = "Untitled list"
)

// GoogleTasksServiceConfig holds configuration for the Google Tasks service.
type GoogleTasksServiceConfig struct {
	// IntegrationStore persists per-user integration records.
	IntegrationStore driven.IntegrationStore

	// Client talks to Google's OAuth and Tasks endpoints.
	Client driven.GoogleClient

	// Logger receives remote diagnostic detail that must not surface to
	// callers.
	Logger *slog.Logger
}

// googleTasksService implements the GoogleTasksService interface.
type googleTasksService struct {
	store  driven.IntegrationStore
	client driven.GoogleClient
	logger *slog.Logger

	// refreshGroup coalesces concurrent refreshes per user id so rapid
	// near-expiry calls issue a single remote refresh.
	refreshGroup singleflight.Group
}

// NewGoogleTasksService creates a new Google Tasks service.
func NewGoogleTasksService(cfg GoogleTasksServiceConfig) driving.GoogleTasksService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &googleTasksService{
		store:  cfg.IntegrationStore,
		client: cfg.Client,
		logger: logger,
	}
}

// EncodeState encodes a user id into the OAuth state parameter.
// The encoding is reversible and unsigned; the callback validates it only
// by equality against the calling user. See DESIGN.md for the trade-off.
func EncodeState(userID string) string {
	return base64.StdEncoding.EncodeToString([]byte(userID))
}

// DecodeState recovers the user id from a state parameter.
func DecodeState(state string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return "", fmt.Errorf("decode state: %w", err)
	}
	return string(raw), nil
}

// GetAuthorizationURL builds the consent URL that starts the OAuth flow.
func (s *googleTasksService) GetAuthorizationURL(userID string) string {
	return s.client.BuildAuthURL(EncodeState(userID))
}

// ExchangeCode completes the OAuth callback for a user.
func (s *googleTasksService) ExchangeCode(ctx context.Context, code, state, callerUserID string) error {
	// Validate state before touching the remote (CSRF)
	stateUserID, err := DecodeState(state)
	if err != nil || stateUserID != callerUserID {
		return driving.ErrInvalidState
	}

	token, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Warn("google token exchange failed", "user_id", callerUserID, "error", err)
		return driving.NewExchangeError(err.Error())
	}
	if token.AccessToken == "" {
		s.logger.Warn("google token exchange returned no access token", "user_id", callerUserID)
		return driving.NewExchangeError("no access token in response")
	}

	// Google omits the refresh token when the user re-consents without a
	// fresh grant. Fall back to the one already on file.
	refreshToken := token.RefreshToken
	if refreshToken == "" {
		existing, err := s.store.GetByUser(ctx, callerUserID)
		if err != nil || existing.RefreshToken == "" {
			s.logger.Warn("no refresh token in response or storage", "user_id", callerUserID)
			return driving.ErrMissingRefreshToken
		}
		refreshToken = existing.RefreshToken
		s.logger.Info("reusing stored refresh token", "user_id", callerUserID)
	}

	now := time.Now()
	integration := &domain.GoogleIntegration{
		ID:             uuid.NewString(),
		UserID:         callerUserID,
		AccessToken:    token.AccessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: now.Add(time.Duration(token.ExpiresIn) * time.Second),
		Active:         true,
		ConnectedAt:    now,
		UpdatedAt:      now,
	}

	// Profile fetch is best-effort: a failure leaves the fields empty but
	// does not abort the exchange.
	if info, err := s.client.GetUserInfo(ctx, token.AccessToken); err != nil {
		s.logger.Warn("google userinfo fetch failed", "user_id", callerUserID, "error", err)
	} else {
		integration.GoogleUserID = info.ID
		integration.GoogleEmail = info.Email
		integration.GoogleName = info.Name
	}

	if err := s.store.Upsert(ctx, integration); err != nil {
		return fmt.Errorf("save integration: %w", err)
	}
	return nil
}

// GetConnectionStatus reports whether the user has an active integration.
func (s *googleTasksService) GetConnectionStatus(ctx context.Context, userID string) (*driving.ConnectionStatus, error) {
	integration, err := s.store.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &driving.ConnectionStatus{Connected: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get integration: %w", err)
	}
	return &driving.ConnectionStatus{Connected: true, Email: integration.GoogleEmail}, nil
}

// Disconnect deactivates the user's integration.
func (s *googleTasksService) Disconnect(ctx context.Context, userID string) error {
	return s.store.Deactivate(ctx, userID)
}

// GetTaskLists enumerates the user's remote task lists.
func (s *googleTasksService) GetTaskLists(ctx context.Context, userID string) ([]domain.GoogleTaskList, error) {
	accessToken, err := s.validAccessToken(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			return []domain.GoogleTaskList{}, nil
		}
		return nil, err
	}

	items, err := s.client.ListTaskLists(ctx, accessToken)
	if err != nil {
		s.logger.Warn("listing google task lists failed", "user_id", userID, "error", err)
		return []domain.GoogleTaskList{}, nil
	}

	lists := make([]domain.GoogleTaskList, 0, len(items))
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = untitledListName
		}
		lists = append(lists, domain.GoogleTaskList{ID: item.ID, Title: title})
	}
	return lists, nil
}

// GetTasks fetches tasks across all lists, or just listID when non-empty.
// A failure fetching one list skips it; the call still returns tasks from
// the remaining lists.
func (s *googleTasksService) GetTasks(ctx context.Context, userID, listID string) ([]domain.GoogleTask, error) {
	accessToken, err := s.validAccessToken(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			return []domain.GoogleTask{}, nil
		}
		return nil, err
	}

	lists, err := s.GetTaskLists(ctx, userID)
	if err != nil {
		return nil, err
	}

	tasks := []domain.GoogleTask{}
	for _, list := range lists {
		if listID != "" && list.ID != listID {
			continue
		}

		items, err := s.client.ListTasks(ctx, accessToken, list.ID)
		if err != nil {
			s.logger.Warn("listing google tasks failed, skipping list",
				"user_id", userID, "list_id", list.ID, "error", err)
			continue
		}

		for _, item := range items {
			status := item.Status
			if status == "" {
				status = domain.TaskStatusNeedsAction
			}
			tasks = append(tasks, domain.GoogleTask{
				ID:        item.ID,
				Title:     item.Title,
				Notes:     item.Notes,
				Status:    status,
				Due:       item.Due,
				Completed: item.Completed,
				ListID:    list.ID,
				ListTitle: list.Title,
			})
		}
	}
	return tasks, nil
}

// SetTaskCompletion marks a task complete or incomplete via a minimal
// partial update.
func (s *googleTasksService) SetTaskCompletion(ctx context.Context, userID, listID, taskID string, completed bool) error {
	accessToken, err := s.validAccessToken(ctx, userID)
	if err != nil {
		return err
	}

	// Fetch the current task first so the patch never carries stale
	// assumptions about other fields.
	current, err := s.client.GetTask(ctx, accessToken, listID, taskID)
	if err != nil {
		s.logger.Warn("fetching google task failed", "user_id", userID, "task_id", taskID, "error", err)
		return fmt.Errorf("get task: %w", domain.ErrRemoteAPI)
	}

	patch := map[string]any{}
	if completed {
		patch["status"] = domain.TaskStatusCompleted
		if current.Completed == "" {
			patch["completed"] = time.Now().UTC().Format(googleTimeLayout)
		}
	} else {
		patch["status"] = domain.TaskStatusNeedsAction
		// Explicit null clears the completion timestamp remotely.
		patch["completed"] = nil
	}

	if err := s.client.PatchTask(ctx, accessToken, listID, taskID, patch); err != nil {
		s.logger.Warn("updating google task failed", "user_id", userID, "task_id", taskID, "error", err)
		return fmt.Errorf("update task: %w", domain.ErrRemoteAPI)
	}
	return nil
}

// UpdateTask updates a task's title and due date via a minimal partial
// update.
func (s *googleTasksService) UpdateTask(ctx context.Context, userID, listID, taskID, title, due string) error {
	accessToken, err := s.validAccessToken(ctx, userID)
	if err != nil {
		return err
	}

	patch := map[string]any{
		"title": title,
		"due":   normalizeDue(due),
	}

	if err := s.client.PatchTask(ctx, accessToken, listID, taskID, patch); err != nil {
		s.logger.Warn("updating google task failed", "user_id", userID, "task_id", taskID, "error", err)
		return fmt.Errorf("update task: %w", domain.ErrRemoteAPI)
	}
	return nil
}

// DeleteTask deletes a remote task.
func (s *googleTasksService) DeleteTask(ctx context.Context, userID, listID, taskID string) error {
	accessToken, err := s.validAccessToken(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.client.DeleteTask(ctx, accessToken, listID, taskID); err != nil {
		s.logger.Warn("deleting google task failed", "user_id", userID, "task_id", taskID, "error", err)
		return fmt.Errorf("delete task: %w", domain.ErrRemoteAPI)
	}
	return nil
}

// normalizeDue converts a due value into the form the Tasks API expects.
// Full timestamps become UTC with millisecond precision, a bare
// YYYY-MM-DD date passes through, anything else is forwarded as-is.
// An empty due returns nil, which the patch sends as an explicit null to
// clear the field.
func normalizeDue(due string) any {
	if due == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, due); err == nil {
		return t.UTC().Format(googleTimeLayout)
	}
	if len(due) == 10 {
		return due
	}
	return due
}

// validAccessToken resolves a currently-valid access token for a user,
// refreshing it when it is within the safety margin of expiry. Any refresh
// failure degrades to ErrNotConnected; the integration resumes working
// after the next successful refresh or a fresh exchange.
func (s *googleTasksService) validAccessToken(ctx context.Context, userID string) (string, error) {
	integration, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotConnected
		}
		return "", fmt.Errorf("get integration: %w", err)
	}

	if !integration.NeedsRefresh() {
		return integration.AccessToken, nil
	}

	// One in-flight refresh per user; followers share the leader's result.
	token, err, _ := s.refreshGroup.Do(userID, func() (any, error) {
		return s.refreshAccessToken(ctx, userID, integration.RefreshToken)
	})
	if err != nil {
		s.logger.Warn("google token refresh failed", "user_id", userID, "error", err)
		return "", domain.ErrNotConnected
	}
	return token.(string), nil
}

// refreshAccessToken mints a new access token and persists it with its
// computed expiry. The stored refresh token is never overwritten here.
func (s *googleTasksService) refreshAccessToken(ctx context.Context, userID, refreshToken string) (string, error) {
	token, err := s.client.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("no access token in refresh response")
	}

	lifetime := time.Duration(token.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = defaultTokenLifetime
	}
	expiresAt := time.Now().Add(lifetime)

	if err := s.store.UpdateTokens(ctx, userID, token.AccessToken, expiresAt); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}
	return token.AccessToken, nil
}
