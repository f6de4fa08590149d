package domain

import "time"

// Task status values used by the Google Tasks API.
const (
	TaskStatusNeedsAction = "needsAction"
	TaskStatusCompleted   = "completed"
)

// refreshMargin is how close to expiry an access token may get before it is
// refreshed ahead of a remote call.
const refreshMargin = 5 * time.Minute

// GoogleIntegration stores one user's Google Tasks connection.
// There is at most one record per user; writes are upserts keyed by UserID.
type GoogleIntegration struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	AccessToken    string    `json:"-"` // Never serialize
	RefreshToken   string    `json:"-"` // Never serialize
	TokenExpiresAt time.Time `json:"token_expires_at"`
	GoogleUserID   string    `json:"google_user_id,omitempty"`
	GoogleEmail    string    `json:"google_email,omitempty"`
	GoogleName     string    `json:"google_name,omitempty"`
	Active         bool      `json:"active"`
	ConnectedAt    time.Time `json:"connected_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsExpired checks if the access token has expired
func (g *GoogleIntegration) IsExpired() bool {
	return time.Now().After(g.TokenExpiresAt)
}

// NeedsRefresh checks if the access token should be refreshed (within 5 min of expiry)
func (g *GoogleIntegration) NeedsRefresh() bool {
	return time.Now().Add(refreshMargin).After(g.TokenExpiresAt)
}

// GoogleTaskList identifies a remote task list. Fetched fresh per call,
// never cached locally.
type GoogleTaskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// GoogleTask is a remote task with its originating list attached for display.
// The remote API is the source of truth; no local copy is retained.
type GoogleTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status"`
	Due       string `json:"due,omitempty"`
	Completed string `json:"completed,omitempty"`
	ListID    string `json:"list_id"`
	ListTitle string `json:"list_title"`
}

// IsCompleted reports whether the task's remote status is completed.
func (t *GoogleTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}
