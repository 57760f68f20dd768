package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mingle/internal/apperrors"
	"mingle/internal/models"
)

func TestAccessTokenRoundtrip(t *testing.T) {
	svc := NewAuthService("test-secret", 15*time.Minute)

	token, err := svc.IssueAccessToken(&models.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService("secret-a", 15*time.Minute)
	verifier := NewAuthService("secret-b", 15*time.Minute)

	token, err := issuer.IssueAccessToken(&models.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := verifier.ParseToken(token); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("wrong secret: err = %v", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret", 15*time.Minute)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.ParseToken(token); !errors.Is(err, apperrors.ErrUnauthenticated) {
			t.Errorf("token %q: err = %v", token, err)
		}
	}
}

func signClaims(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService("test-secret", 15*time.Minute)

	// Expired well past the verification leeway.
	token := signClaims(t, "test-secret", &Claims{
		UserID:   "u1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	if _, err := svc.ParseToken(token); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("expired token: err = %v", err)
	}
}

func TestParseTokenAllowsClockSkew(t *testing.T) {
	svc := NewAuthService("test-secret", 15*time.Minute)

	// Expired, but inside the leeway window: an issuer clock slightly ahead
	// of ours must not invalidate fresh tokens.
	token := signClaims(t, "test-secret", &Claims{
		UserID:   "u1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("token inside leeway rejected: %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenRequiresExpiry(t *testing.T) {
	svc := NewAuthService("test-secret", 15*time.Minute)

	token := signClaims(t, "test-secret", &Claims{UserID: "u1", Username: "alice"})
	if _, err := svc.ParseToken(token); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("token without exp: err = %v", err)
	}
}

func TestParseTokenRejectsMissingSubject(t *testing.T) {
	svc := NewAuthService("test-secret", 15*time.Minute)

	token := signClaims(t, "test-secret", &Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := svc.ParseToken(token); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("empty user id: err = %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	svc := NewAuthService("test-secret", 15*time.Minute)

	hash, err := svc.HashPassword("hunter2-hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2-hunter2" {
		t.Fatal("password stored in clear")
	}
	if !svc.CheckPassword(hash, "hunter2-hunter2") {
		t.Error("correct password rejected")
	}
	if svc.CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
