package auth

import (
	"context"
	"testing"
	"time"

	"live_chat_server/internal/dao/redis/redistest"
	"live_chat_server/pkg/errorx"
	"live_chat_server/pkg/util/jwt"
)

func TestRefreshTokenIssuesAccessToken(t *testing.T) {
	jwt.Init("test-secret", 15, 24)
	cache := redistest.New()
	svc := NewAuthService(cache)

	refresh, tokenID, err := jwt.GenerateRefreshToken("u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_ = cache.SaveTokenID(context.Background(), "u1", tokenID, time.Hour)

	res, err := svc.RefreshToken(refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := jwt.ParseAccessToken(res.AccessToken)
	if err != nil || claims.UserID != "u1" {
		t.Fatalf("claims = %+v, %v", claims, err)
	}
}

func TestRefreshTokenRejectsSupersededLogin(t *testing.T) {
	jwt.Init("test-secret", 15, 24)
	cache := redistest.New()
	svc := NewAuthService(cache)

	old, _, _ := jwt.GenerateRefreshToken("u1")
	_, newer, _ := jwt.GenerateRefreshToken("u1")
	_ = cache.SaveTokenID(context.Background(), "u1", newer, time.Hour)

	if _, err := svc.RefreshToken(old); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("err = %v", err)
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	jwt.Init("test-secret", 15, 24)
	svc := NewAuthService(redistest.New())

	access, _ := jwt.GenerateAccessToken("u1")
	if _, err := svc.RefreshToken(access); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("access token err = %v", err)
	}
	if _, err := svc.RefreshToken("garbage"); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("garbage err = %v", err)
	}
}
