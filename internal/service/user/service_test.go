package user

import (
	"context"
	"testing"
	"time"

	"live_chat_server/internal/dao/mysql/dbtest"
	"live_chat_server/internal/dao/mysql/repository"
	"live_chat_server/internal/dao/redis/redistest"
	"live_chat_server/internal/dto/request"
	"live_chat_server/pkg/constants"
	"live_chat_server/pkg/errorx"
	"live_chat_server/pkg/util/jwt"
)

func setup(t *testing.T) (*userInfoService, *repository.Repositories, *redistest.Memory) {
	t.Helper()
	jwt.Init("test-secret", 15, 24)
	repos := dbtest.New(t)
	cache := redistest.New()
	return NewUserService(repos, cache), repos, cache
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, cache := setup(t)

	user, err := svc.Register(request.RegisterRequest{Username: "alice", Email: "Alice@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" || len(user.UserCode) != constants.USER_CODE_LEN || user.UserId == "" {
		t.Fatalf("user = %+v", user)
	}

	login, err := svc.Login(request.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.UserId != user.UserId || login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatalf("login = %+v", login)
	}

	claims, err := jwt.ParseToken(login.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	stored, _ := cache.TokenID(context.Background(), user.UserId)
	if stored != claims.TokenID {
		t.Fatalf("stored token id = %q, want %q", stored, claims.TokenID)
	}
	if ttl := cache.TokenTTL(user.UserId); ttl != 24*time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc, repos, _ := setup(t)
	dbtest.SeedUser(t, repos, "u1", "alice")

	if _, err := svc.Register(request.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "secret1"}); errorx.GetCode(err) != errorx.CodeConflict {
		t.Fatalf("username err = %v", err)
	}
	if _, err := svc.Register(request.RegisterRequest{Username: "other", Email: "alice@example.com", Password: "secret1"}); errorx.GetCode(err) != errorx.CodeConflict {
		t.Fatalf("email err = %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repos, _ := setup(t)
	dbtest.SeedUser(t, repos, "u1", "alice")

	if _, err := svc.Login(request.LoginRequest{Email: "alice@example.com", Password: "wrong"}); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := svc.Login(request.LoginRequest{Email: "nobody@example.com", Password: "secret1"}); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestSearchUsers(t *testing.T) {
	svc, repos, _ := setup(t)
	dbtest.SeedUser(t, repos, "u1", "alice")
	dbtest.SeedUser(t, repos, "u2", "alicia")
	dbtest.SeedUser(t, repos, "u3", "bob")

	if _, err := svc.SearchUsers("u1", " a "); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("short query err = %v", err)
	}
	found, err := svc.SearchUsers("u1", "ali")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].UserId != "u2" {
		t.Fatalf("found = %+v", found)
	}
}

func TestOnlineUsersReadsMirror(t *testing.T) {
	svc, repos, cache := setup(t)
	dbtest.SeedUser(t, repos, "u1", "alice")
	dbtest.SeedUser(t, repos, "u2", "bob")

	empty, err := svc.OnlineUsers()
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty = %+v, %v", empty, err)
	}

	_ = cache.MarkOnline(context.Background(), "u2")
	online, err := svc.OnlineUsers()
	if err != nil || len(online) != 1 || online[0].Username != "bob" {
		t.Fatalf("online = %+v, %v", online, err)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc, _, _ := setup(t)
	if _, err := svc.GetProfile("ghost"); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("err = %v", err)
	}
}
