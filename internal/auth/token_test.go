package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), time.Hour)

	token, err := tm.Issue(42, "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager([]byte("secret-a"), time.Hour)
	other := NewTokenManager([]byte("secret-b"), time.Hour)

	token, err := tm.Issue(1, "bob")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager([]byte("secret"), -time.Minute)

	token, err := tm.Issue(1, "bob")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := tm.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse of expired token = %v, want ErrInvalidToken", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager([]byte("secret"), time.Hour)
	if _, err := tm.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse of garbage = %v, want ErrInvalidToken", err)
	}
}
