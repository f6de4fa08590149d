package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anota-labs/anota-core/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.GoogleClient = (*Client)(nil)

const (
	authEndpoint     = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenEndpoint    = "https://oauth2.googleapis.com/token"
	userInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"
	tasksAPIBase     = "https://tasks.googleapis.com/tasks/v1"
)

// scopes requested on every consent. Tasks access plus enough profile to
// label the connection in the UI.
var scopes = []string{
	"https://www.googleapis.com/auth/tasks",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// Config holds the OAuth application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Client talks to Google's OAuth and Tasks endpoints over plain HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client

	// Endpoint overrides for tests. Empty means production.
	authURL     string
	tokenURL    string
	userInfoURL string
	tasksURL    string
}

// NewClient creates a Google client with a bounded request timeout.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithEndpoints creates a client pointed at alternate endpoints.
// Used in tests against httptest servers.
func NewClientWithEndpoints(cfg Config, tokenURL, userInfoURL, tasksURL string) *Client {
	c := NewClient(cfg)
	c.tokenURL = tokenURL
	c.userInfoURL = userInfoURL
	c.tasksURL = tasksURL
	return c
}

func (c *Client) authEndpoint() string {
	if c.authURL != "" {
		return c.authURL
	}
	return authEndpoint
}

func (c *Client) tokenEndpoint() string {
	if c.tokenURL != "" {
		return c.tokenURL
	}
	return tokenEndpoint
}

func (c *Client) userInfoEndpoint() string {
	if c.userInfoURL != "" {
		return c.userInfoURL
	}
	return userInfoEndpoint
}

func (c *Client) tasksBase() string {
	if c.tasksURL != "" {
		return c.tasksURL
	}
	return tasksAPIBase
}

// BuildAuthURL constructs the consent URL for the authorization code flow.
// access_type=offline and prompt=consent force Google to reissue a refresh
// token even for users who granted consent before.
func (c *Client) BuildAuthURL(state string) string {
	params := url.Values{
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {c.cfg.RedirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(scopes, " ")},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
		"state":         {state},
	}
	return c.authEndpoint() + "?" + params.Encode()
}

// ExchangeCode exchanges an authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*driven.GoogleToken, error) {
	params := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"code":          {code},
		"redirect_uri":  {c.cfg.RedirectURI},
		"grant_type":    {"authorization_code"},
	}
	return c.postToken(ctx, params)
}

// RefreshAccessToken mints a new access token from a refresh token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*driven.GoogleToken, error) {
	params := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}
	return c.postToken(ctx, params)
}

// postToken posts a form to the token endpoint and decodes the response.
// Google sometimes reports failures as an error field inside a 200 body, so
// both paths are checked.
func (c *Client) postToken(ctx context.Context, params url.Values) (*driven.GoogleToken, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenEndpoint(),
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
		Error        string `json:"error"`
		ErrorDesc    string `json:"error_description"`
	}

	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &tokenResp) == nil && tokenResp.Error != "" {
			return nil, fmt.Errorf("oauth error: %s - %s", tokenResp.Error, tokenResp.ErrorDesc)
		}
		return nil, fmt.Errorf("token request failed: %s", string(body))
	}

	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if tokenResp.Error != "" {
		return nil, fmt.Errorf("oauth error: %s - %s", tokenResp.Error, tokenResp.ErrorDesc)
	}

	return &driven.GoogleToken{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
	}, nil
}

// GetUserInfo fetches the authenticated user's profile.
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (*driven.GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.userInfoEndpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get user info failed: %s", string(body))
	}

	var info driven.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

// ListTaskLists enumerates the user's task lists.
func (c *Client) ListTaskLists(ctx context.Context, accessToken string) ([]driven.GoogleTaskListItem, error) {
	var result struct {
		Items []driven.GoogleTaskListItem `json:"items"`
	}
	url := c.tasksBase() + "/users/@me/lists"
	if err := c.doTasksJSON(ctx, accessToken, "GET", url, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// ListTasks fetches all tasks in a list, including completed and hidden ones.
func (c *Client) ListTasks(ctx context.Context, accessToken, listID string) ([]driven.GoogleTaskItem, error) {
	var result struct {
		Items []driven.GoogleTaskItem `json:"items"`
	}
	u := fmt.Sprintf("%s/lists/%s/tasks?showCompleted=true&showHidden=true",
		c.tasksBase(), url.PathEscape(listID))
	if err := c.doTasksJSON(ctx, accessToken, "GET", u, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, accessToken, listID, taskID string) (*driven.GoogleTaskItem, error) {
	var task driven.GoogleTaskItem
	u := fmt.Sprintf("%s/lists/%s/tasks/%s",
		c.tasksBase(), url.PathEscape(listID), url.PathEscape(taskID))
	if err := c.doTasksJSON(ctx, accessToken, "GET", u, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// PatchTask submits a partial update. Keys absent from patch stay untouched
// on the remote; keys present with a nil value serialize to JSON null and
// clear the field.
func (c *Client) PatchTask(ctx context.Context, accessToken, listID, taskID string, patch map[string]any) error {
	u := fmt.Sprintf("%s/lists/%s/tasks/%s",
		c.tasksBase(), url.PathEscape(listID), url.PathEscape(taskID))
	return c.doTasksJSON(ctx, accessToken, "PATCH", u, patch, nil)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, accessToken, listID, taskID string) error {
	u := fmt.Sprintf("%s/lists/%s/tasks/%s",
		c.tasksBase(), url.PathEscape(listID), url.PathEscape(taskID))
	return c.doTasksJSON(ctx, accessToken, "DELETE", u, nil, nil)
}

// doTasksJSON performs an authenticated Tasks API request. payload, when
// non-nil, is sent as a JSON body. result, when non-nil, receives the
// decoded response body.
func (c *Client) doTasksJSON(ctx context.Context, accessToken, method, url string, payload any, result any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tasks api returned %d: %s", resp.StatusCode, string(data))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
