package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func initTestJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()
}

func TestJWTRoundTrip(t *testing.T) {
	initTestJWT(t)

	userID := "8a6e0804-2bd0-4672-b79d-d97027f9071a"
	token, err := GenerateJWT(userID)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	got, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if got != userID {
		t.Errorf("expected user %s, got %s", userID, got)
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	initTestJWT(t)

	claims := jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
		"nbf":     time.Now().Add(-2 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseJWT(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestJWTRejectsTampered(t *testing.T) {
	initTestJWT(t)

	token, err := GenerateJWT("user-1")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT(token + "x"); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}
