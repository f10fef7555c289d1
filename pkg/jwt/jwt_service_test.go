package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenUser_RoundTrip(t *testing.T) {
	service := NewJWTService()

	userID := uuid.New().String()
	token := service.GenerateTokenUser(userID, "user")
	if token == "" {
		t.Fatal("expected a signed token")
	}

	parsed, err := service.ValidateTokenUser(token)
	if err != nil {
		t.Fatalf("ValidateTokenUser failed: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("expected token to be valid")
	}

	gotID, role, err := service.GetUserIDByToken(token)
	if err != nil {
		t.Fatalf("GetUserIDByToken failed: %v", err)
	}
	if gotID != userID {
		t.Errorf("expected user id %s, got %s", userID, gotID)
	}
	if role != "user" {
		t.Errorf("expected role user, got %q", role)
	}
}

func TestTokenUser_Garbage(t *testing.T) {
	service := NewJWTService()

	if _, err := service.ValidateTokenUser("not.a.token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
	if _, _, err := service.GetUserIDByToken(""); err == nil {
		t.Fatal("expected an error for an empty token")
	}
}

func TestTokenEmail_RoundTrip(t *testing.T) {
	service := NewJWTService()

	token, err := service.GenerateTokenEmail(map[string]any{"email": "alice@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateTokenEmail failed: %v", err)
	}

	claims, err := service.ValidateTokenEmail(token)
	if err != nil {
		t.Fatalf("ValidateTokenEmail failed: %v", err)
	}
	if claims["email"] != "alice@example.com" {
		t.Errorf("expected alice@example.com, got %v", claims["email"])
	}
}

func TestTokenEmail_Expired(t *testing.T) {
	service := NewJWTService()

	token, err := service.GenerateTokenEmail(map[string]any{"email": "alice@example.com"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateTokenEmail failed: %v", err)
	}

	if _, err := service.ValidateTokenEmail(token); err == nil {
		t.Fatal("expected an error for an expired token")
	}
}
