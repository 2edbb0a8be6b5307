package service

import (
	"errors"
	"testing"
	"time"
)

func TestJWT_IssueAndParseRoundtrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	token, err := svc.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a signed token")
	}

	claims, err := svc.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("unexpected error parsing token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}
	if claims.TokenType != "access" {
		t.Fatalf("expected access type, got %q", claims.TokenType)
	}
}

func TestJWT_WrongSecretRejected(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Minute)
	verifier := NewJWTService("secret-b", time.Minute)

	token, err := issuer.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := verifier.ParseAccessToken(token); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWT_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)
	// TTL negativo fuerza el default de 15m, asi que firmamos a mano uno vencido.
	expired := &JWTService{secret: []byte("test-secret"), accessTTL: -time.Hour, issuer: "match-coach"}

	token, err := expired.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ParseAccessToken(token); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWT_EmptySecret(t *testing.T) {
	svc := NewJWTService("", time.Minute)

	if _, err := svc.IssueAccessToken("user-1"); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on issue, got %v", err)
	}
	if _, err := svc.ParseAccessToken("whatever"); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on parse, got %v", err)
	}
}

func TestJWT_GarbageToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	if _, err := svc.ParseAccessToken("not.a.jwt"); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}
