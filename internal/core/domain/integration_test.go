package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNeedsRefresh(t *testing.T) {
	cases := []struct {
		name      string
		expiresIn time.Duration
		want      bool
	}{
		{"fresh token", time.Hour, false},
		{"just outside margin", 6 * time.Minute, false},
		{"inside margin", 2 * time.Minute, true},
		{"already expired", -time.Minute, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := &GoogleIntegration{TokenExpiresAt: time.Now().Add(tc.expiresIn)}
			if got := g.NeedsRefresh(); got != tc.want {
				t.Errorf("NeedsRefresh() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsExpired(t *testing.T) {
	valid := &GoogleIntegration{TokenExpiresAt: time.Now().Add(time.Minute)}
	if valid.IsExpired() {
		t.Error("expected token valid for a minute to not be expired")
	}

	expired := &GoogleIntegration{TokenExpiresAt: time.Now().Add(-time.Second)}
	if !expired.IsExpired() {
		t.Error("expected past expiry to read as expired")
	}
}

func TestIntegrationTokensNeverSerialize(t *testing.T) {
	g := &GoogleIntegration{
		ID:           "i1",
		UserID:       "u1",
		AccessToken:  "secret-access",
		RefreshToken: "secret-refresh",
	}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "secret-access") || strings.Contains(string(data), "secret-refresh") {
		t.Errorf("tokens leaked into JSON: %s", data)
	}
}

func TestTaskIsCompleted(t *testing.T) {
	done := &GoogleTask{Status: TaskStatusCompleted}
	if !done.IsCompleted() {
		t.Error("expected completed status to read as completed")
	}

	pending := &GoogleTask{Status: TaskStatusNeedsAction}
	if pending.IsCompleted() {
		t.Error("expected needsAction status to read as not completed")
	}
}
