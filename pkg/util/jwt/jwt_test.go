package jwt

import (
	"errors"
	"testing"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	Init("test-secret", 15, 168)

	token, err := GenerateAccessToken("U_TEST")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "U_TEST" {
		t.Fatalf("user = %s", claims.UserID)
	}
}

func TestRefreshTokenIsNotAccessToken(t *testing.T) {
	Init("test-secret", 15, 168)

	token, tokenID, err := GenerateRefreshToken("U_TEST")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tokenID == "" {
		t.Fatalf("empty token id")
	}
	if _, err := ParseAccessToken(token); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("err = %v, want ErrWrongTokenType", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	Init("test-secret", -1, 168)
	token, err := GenerateAccessToken("U_TEST")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestForeignSecretRejected(t *testing.T) {
	Init("secret-a", 15, 168)
	token, _ := GenerateAccessToken("U_TEST")
	Init("secret-b", 15, 168)
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret accepted")
	}
}
