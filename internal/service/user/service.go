// Package user 提供注册、登录和用户查询
package user

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"live_chat_server/internal/dao/mysql/repository"
	myredis "live_chat_server/internal/dao/redis"
	"live_chat_server/internal/dto/request"
	"live_chat_server/internal/dto/respond"
	"live_chat_server/internal/model"
	"live_chat_server/pkg/constants"
	"live_chat_server/pkg/errorx"
	"live_chat_server/pkg/util/jwt"
	"live_chat_server/pkg/util/random"
)

// userInfoService 用户业务逻辑实现
// 通过构造函数注入 Repository 和缓存依赖
type userInfoService struct {
	repos *repository.Repositories
	cache myredis.CacheService
}

// NewUserService 构造函数
func NewUserService(repos *repository.Repositories, cache myredis.CacheService) *userInfoService {
	return &userInfoService{repos: repos, cache: cache}
}

// Register 注册
// 邮箱和用户名都必须未被占用，成功后生成公开短码和默认头像
func (u *userInfoService) Register(req request.RegisterRequest) (*respond.UserRespond, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "用户名和邮箱不能为空")
	}

	if err := u.checkNotExist(u.repos.User.FindByEmail, email, "该邮箱已被注册"); err != nil {
		return nil, err
	}
	if err := u.checkNotExist(u.repos.User.FindByUsername, username, "该用户名已被使用"); err != nil {
		return nil, err
	}

	newUser := &model.User{
		Uuid:        "U" + random.GetNowAndLenRandomString(11),
		Username:    username,
		UserCode:    random.GetUpperCode(constants.USER_CODE_LEN),
		Email:       email,
		Avatar:      avatarURL(username),
		RawPassword: req.Password,
	}
	if err := u.repos.User.Create(newUser); err != nil {
		if errorx.GetCode(err) == errorx.CodeConflict {
			return nil, errorx.Wrap(err, errorx.CodeConflict, "用户名或邮箱已被使用")
		}
		return nil, err
	}
	zap.L().Info("user registered", zap.String("user_id", newUser.Uuid))

	res := respond.NewUserRespond(newUser)
	return &res, nil
}

// checkNotExist 查到记录即冲突，NotFound 视为可用
func (u *userInfoService) checkNotExist(find func(string) (*model.User, error), value, msg string) error {
	_, err := find(value)
	if err == nil {
		return errorx.New(errorx.CodeConflict, msg)
	}
	if errorx.IsNotFound(err) {
		return nil
	}
	return err
}

// Login 登录
// 签发双 Token，并把 Refresh Token ID 存入 Redis 实现单点互踢
func (u *userInfoService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := u.repos.User.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "邮箱或密码错误")
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeUnauthorized, "邮箱或密码错误")
	}

	accessToken, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "生成 Access Token 失败")
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "生成 Refresh Token 失败")
	}

	if err := u.cache.SaveTokenID(context.Background(), user.Uuid, tokenID, jwt.RefreshTokenExpiry()); err != nil {
		// 不阻塞登录流程，仅记录日志
		zap.L().Error("存储 Token ID 到 Redis 失败", zap.Error(err))
	}

	return &respond.LoginRespond{
		User:         respond.NewUserRespond(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetProfile 获取用户资料
func (u *userInfoService) GetProfile(userId string) (*respond.UserRespond, error) {
	user, err := u.repos.User.FindByUuid(userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeNotFound, "用户不存在")
		}
		return nil, err
	}
	res := respond.NewUserRespond(user)
	return &res, nil
}

// SearchUsers 按用户名、邮箱或短码模糊搜索，排除自己
func (u *userInfoService) SearchUsers(userId, query string) ([]respond.UserBrief, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < constants.SEARCH_MIN_LEN {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "搜索关键字至少 %d 个字符", constants.SEARCH_MIN_LEN)
	}
	users, err := u.repos.User.Search(query, userId, constants.SEARCH_LIMIT)
	if err != nil {
		return nil, err
	}
	return briefs(users), nil
}

// OnlineUsers 从 Redis 在线镜像读取在线用户
func (u *userInfoService) OnlineUsers() ([]respond.UserBrief, error) {
	ids, err := u.cache.OnlineUserIds(context.Background())
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []respond.UserBrief{}, nil
	}
	users, err := u.repos.User.FindByUuids(ids)
	if err != nil {
		return nil, err
	}
	return briefs(users), nil
}

func briefs(users []model.User) []respond.UserBrief {
	list := make([]respond.UserBrief, 0, len(users))
	for i := range users {
		list = append(list, respond.NewUserBrief(&users[i]))
	}
	return list
}

func avatarURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	return constants.AVATAR_BASE_URL + "?" + q.Encode()
}
