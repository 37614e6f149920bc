package utils

import (
	"testing"
	"time"

	"github.com/feedline/feedline/config"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	config.Set(config.AppConfig{SessionSecret: "unit-test-secret"})

	token, err := GenerateToken(42, "poster", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "poster" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	config.Set(config.AppConfig{SessionSecret: "unit-test-secret"})

	token, err := GenerateToken(1, "poster", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	config.Set(config.AppConfig{SessionSecret: "first-secret"})
	token, err := GenerateToken(1, "poster", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	config.Set(config.AppConfig{SessionSecret: "second-secret"})
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("expected token signed with a different secret to be rejected")
	}
}
