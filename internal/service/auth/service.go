// Package auth 提供认证相关的业务逻辑
// 处理 Refresh Token 验证与 Access Token 续签
package auth

import (
	"context"

	"go.uber.org/zap"

	myredis "live_chat_server/internal/dao/redis"
	"live_chat_server/internal/dto/respond"
	"live_chat_server/pkg/errorx"
	"live_chat_server/pkg/util/jwt"
)

// Service 认证服务实现
type Service struct {
	tokens myredis.TokenStore
}

// NewAuthService 创建认证服务实例
func NewAuthService(tokens myredis.TokenStore) *Service {
	return &Service{tokens: tokens}
}

// RefreshToken 用 Refresh Token 换取新的 Access Token
// Token ID 必须与 Redis 中最近一次登录写入的一致，否则视为已在别处登录
func (s *Service) RefreshToken(refreshToken string) (*respond.RefreshTokenRespond, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "Refresh Token 无效或已过期")
	}
	if claims.Subject != jwt.SubjectRefreshToken {
		return nil, errorx.Wrap(jwt.ErrWrongTokenType, errorx.CodeUnauthorized, "Token 类型错误")
	}

	valid, err := s.ValidateTokenID(claims.UserID, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if !valid {
		zap.L().Info("refresh token revoked", zap.String("user_id", claims.UserID))
		return nil, errorx.New(errorx.CodeUnauthorized, "账号已在其他设备登录，请重新登录")
	}

	accessToken, err := jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "生成 Access Token 失败")
	}
	return &respond.RefreshTokenRespond{AccessToken: accessToken}, nil
}

// ValidateTokenID 验证用户的 Token ID 是否有效
// 用于实现单点登录互踢机制
func (s *Service) ValidateTokenID(userID, tokenID string) (bool, error) {
	validTokenID, err := s.tokens.TokenID(context.Background(), userID)
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}
