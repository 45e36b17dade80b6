package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestVerifyTokenIDClaim(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := signToken(t, testSecret, accessClaims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
		ID:             "u123",
	})

	got, err := v.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != "u123" {
		t.Fatalf("user id = %q, want u123", got)
	}
}

func TestVerifyTokenFallsBackToSubject(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := signToken(t, testSecret, jwt.StandardClaims{
		Subject:   "u456",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	got, err := v.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != "u456" {
		t.Fatalf("user id = %q, want u456", got)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := signToken(t, "other-secret", jwt.StandardClaims{Subject: "u1"})

	if _, err := v.VerifyToken(token); err == nil {
		t.Fatal("token signed with another secret must fail")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := signToken(t, testSecret, jwt.StandardClaims{
		Subject:   "u1",
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := v.VerifyToken(token); err == nil {
		t.Fatal("expired token must fail")
	}
}

func TestVerifyTokenMissingSubject(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := signToken(t, testSecret, jwt.StandardClaims{
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	if _, err := v.VerifyToken(token); !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("err = %v, want ErrInvalidSubject", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	if _, err := v.VerifyToken("not.a.jwt"); err == nil {
		t.Fatal("garbage input must fail")
	}
}
