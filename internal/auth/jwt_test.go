package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"clinic-platform/internal/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour}); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t)

	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, Identity{UserID: "user-1", Email: "doc@clinic.test", Role: "DOCTOR"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}
	if !pair.AccessExpiresAt.Before(pair.RefreshExpiresAt) {
		t.Fatalf("access token must expire before refresh token")
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "doc@clinic.test" || claims.Role != "DOCTOR" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := m.Verify(pair.RefreshToken, TokenTypeRefresh, now.Add(time.Hour)); err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, Identity{UserID: "u", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, pair.AccessExpiresAt.Add(time.Second)); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, pair.AccessExpiresAt.Add(-time.Second)); err != nil {
		t.Fatalf("expected token valid just before expiry, got %v", err)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, Identity{UserID: "u", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, pair.AccessExpiresAt); err != nil {
		t.Fatalf("expected token valid at the expiry instant, got %v", err)
	}
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, pair.AccessExpiresAt.Add(time.Nanosecond)); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired just past expiry, got %v", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()
	pair, err := m.IssuePair(now, Identity{UserID: "u", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(pair.AccessToken, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := m.Verify(tampered, TokenTypeAccess, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := m.Verify("not-a-jwt", TokenTypeAccess, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for malformed token, got %v", err)
	}
}

func TestVerifyRejectsOtherKey(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(config.AuthConfig{JWTSecret: "other", JWTIssuer: "issuer", JWTAudience: "aud", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	pair, err := other.IssuePair(time.Now(), Identity{UserID: "u", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, time.Now()); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m := newTestManager(t)
	p, err := m.IssuePair(time.Now(), Identity{UserID: "u", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.RefreshToken, TokenTypeAccess, time.Now()); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected token_type mismatch, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]bool{
		"Bearer abc": true,
		"bearer abc": true,
		"Bearer ":    false,
		"Basic abc":  false,
		"":           false,
		"abc":        false,
	}
	for header, ok := range cases {
		if _, got := BearerToken(header); got != ok {
			t.Fatalf("BearerToken(%q) ok=%v, want %v", header, got, ok)
		}
	}
}
