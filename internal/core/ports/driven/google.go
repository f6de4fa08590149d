package driven

import "context"

// GoogleToken is the payload of the Google OAuth token endpoint.
// RefreshToken is frequently absent: Google only reissues it on a fresh
// consent grant.
type GoogleToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
}

// GoogleUserInfo is the remote account profile attached to an integration.
type GoogleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleTaskItem is a raw task as returned by the Tasks API, before the
// originating list is attached.
type GoogleTaskItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status,omitempty"`
	Due       string `json:"due,omitempty"`
	Completed string `json:"completed,omitempty"`
}

// GoogleTaskListItem is a raw task list as returned by the Tasks API.
type GoogleTaskListItem struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// GoogleClient talks to Google's OAuth and Tasks endpoints.
// Every call carries a bounded timeout and honors ctx cancellation.
// Token-endpoint failures that arrive as an error field inside a 200 body
// are surfaced as errors carrying the remote-supplied message, same as
// non-2xx statuses.
type GoogleClient interface {
	// BuildAuthURL constructs the consent URL for the authorization code
	// flow. access_type=offline and prompt=consent are always set so a
	// refresh token is reissued even for returning users.
	BuildAuthURL(state string) string

	// ExchangeCode trades an authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*GoogleToken, error)

	// RefreshAccessToken mints a new access token from a refresh token.
	RefreshAccessToken(ctx context.Context, refreshToken string) (*GoogleToken, error)

	// GetUserInfo fetches the remote account's profile.
	GetUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error)

	// ListTaskLists enumerates the user's task lists.
	ListTaskLists(ctx context.Context, accessToken string) ([]GoogleTaskListItem, error)

	// ListTasks fetches all tasks in a list, including completed and hidden.
	ListTasks(ctx context.Context, accessToken, listID string) ([]GoogleTaskItem, error)

	// GetTask fetches a single task.
	GetTask(ctx context.Context, accessToken, listID, taskID string) (*GoogleTaskItem, error)

	// PatchTask submits a partial update. Keys absent from patch are left
	// untouched by the remote; keys present with a nil value are sent as
	// explicit JSON null, which clears the field.
	PatchTask(ctx context.Context, accessToken, listID, taskID string, patch map[string]any) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, accessToken, listID, taskID string) error
}
