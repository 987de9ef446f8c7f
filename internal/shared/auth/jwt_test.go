package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"assessment-backend/internal/shared/config"
)

func testSigner(t *testing.T, now time.Time) *Signer {
	t.Helper()
	s, err := NewSigner(config.Config{Env: "dev", JWTSecret: "test-secret", JWTTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	s.now = func() time.Time { return now }
	return s
}

func TestSignVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := testSigner(t, now)

	token, err := s.Sign(Claims{Sub: "user-1", Email: "owner@example.com"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Sub != "user-1" || claims.Email != "owner@example.com" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
	if claims.Exp != now.Add(time.Hour).Unix() {
		t.Fatalf("expected exp one hour out, got %d", claims.Exp)
	}
}

func TestVerifyRejectsTamperedAndExpired(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := testSigner(t, now)

	token, err := s.Sign(Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := s.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := s.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := s.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestNewSignerRequiresSecretOutsideDev(t *testing.T) {
	if _, err := NewSigner(config.Config{Env: "production"}); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := NewSigner(config.Config{Env: "dev"}); err != nil {
		t.Fatalf("dev signer without secret: %v", err)
	}
}

func TestSignRequiresSub(t *testing.T) {
	s := testSigner(t, time.Now())
	if _, err := s.Sign(Claims{}); !errors.Is(err, ErrMissingSub) {
		t.Fatalf("expected ErrMissingSub, got %v", err)
	}
}
