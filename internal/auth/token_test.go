package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)

	token, expiresAt, err := tm.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("token already expired")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.AgentID != 42 {
		t.Fatalf("agent id=%d, want 42", claims.AgentID)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 30).GenerateToken(1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewTokenManager("secret-b", 30).ParseToken(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}
