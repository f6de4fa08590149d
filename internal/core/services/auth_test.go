package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/anota-labs/anota-core/internal/core/domain"
)

// Mock user store

type mockUserStore struct {
	users      map[string]*domain.User
	lastLogins []string
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*domain.User)}
}

func (m *mockUserStore) Save(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == strings.ToLower(strings.TrimSpace(email)) {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserStore) UpdateLastLogin(ctx context.Context, id string) error {
	m.lastLogins = append(m.lastLogins, id)
	return nil
}

// Mock cache

type mockCache struct {
	values map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{values: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	_, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = []byte("set")
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

// Mock auth adapter. Deterministic fake hashing keeps the tests fast.

type mockAuthAdapter struct {
	parseErr error
	claims   map[string]*domain.TokenClaims
	counter  int
}

func newMockAuthAdapter() *mockAuthAdapter {
	return &mockAuthAdapter{claims: make(map[string]*domain.TokenClaims)}
}

func (m *mockAuthAdapter) HashPassword(password string) (string, error) {
	return "hash:" + password, nil
}

func (m *mockAuthAdapter) VerifyPassword(password, hash string) bool {
	return hash == "hash:"+password
}

func (m *mockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	m.counter++
	token := fmt.Sprintf("token-%d", m.counter)
	m.claims[token] = claims
	return token, nil
}

func (m *mockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	claims, ok := m.claims[token]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	// Mirrors the real adapter, which rejects expired tokens during parsing
	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}
	return claims, nil
}

func TestRegister(t *testing.T) {
	store := newMockUserStore()
	svc := NewAuthService(store, newMockCache(), newMockAuthAdapter())

	resp, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:     "New@Example.com",
		Password:  "secret123",
		FirstName: "Ana",
		LastName:  "García",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if resp.Token == "" {
		t.Error("expected a token on registration")
	}
	if resp.User.Email != "new@example.com" {
		t.Errorf("expected normalized email, got %q", resp.User.Email)
	}
	if len(store.users) != 1 {
		t.Errorf("expected one stored user, got %d", len(store.users))
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMockUserStore()
	svc := NewAuthService(store, newMockCache(), newMockAuthAdapter())

	req := domain.RegisterRequest{Email: "a@b.com", Password: "pw123456", FirstName: "A"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := NewAuthService(newMockUserStore(), newMockCache(), newMockAuthAdapter())

	_, err := svc.Register(context.Background(), domain.RegisterRequest{Email: "a@b.com"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	store := newMockUserStore()
	svc := NewAuthService(store, newMockCache(), newMockAuthAdapter())

	if _, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@b.com", Password: "pw123456", FirstName: "A",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	resp, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token on login")
	}
	if len(store.lastLogins) < 2 {
		t.Error("expected last login recorded")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewAuthService(newMockUserStore(), newMockCache(), newMockAuthAdapter())

	if _, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@b.com", Password: "pw123456", FirstName: "A",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "nope"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownAndInactiveLookTheSame(t *testing.T) {
	store := newMockUserStore()
	svc := NewAuthService(store, newMockCache(), newMockAuthAdapter())

	if _, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@b.com", Password: "pw123456", FirstName: "A",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	for _, user := range store.users {
		user.Active = false
	}

	_, errInactive := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "pw123456"})
	_, errUnknown := svc.Login(context.Background(), domain.LoginRequest{Email: "nobody@b.com", Password: "pw123456"})

	if !errors.Is(errInactive, domain.ErrInvalidCredentials) || !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Errorf("expected identical errors, got %v and %v", errInactive, errUnknown)
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(newMockUserStore(), newMockCache(), newMockAuthAdapter())

	resp, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@b.com", Password: "pw123456", FirstName: "A",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	authCtx, err := svc.ValidateToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if authCtx.Email != "a@b.com" {
		t.Errorf("unexpected auth context: %+v", authCtx)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	adapter := newMockAuthAdapter()
	svc := NewAuthService(newMockUserStore(), newMockCache(), adapter)

	token, _ := adapter.GenerateToken(&domain.TokenClaims{
		UserID:    "u1",
		Email:     "a@b.com",
		IssuedAt:  time.Now().Add(-25 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})

	_, err := svc.ValidateToken(context.Background(), token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	cache := newMockCache()
	svc := NewAuthService(newMockUserStore(), cache, newMockAuthAdapter())

	resp, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@b.com", Password: "pw123456", FirstName: "A",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	_, err = svc.ValidateToken(context.Background(), resp.Token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected revoked token to be rejected, got %v", err)
	}
}
