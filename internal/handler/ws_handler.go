// Package handler 提供 HTTP 请求处理器
// 本文件处理实时连接的握手
package handler

import (
	"strings"

	"live_chat_server/internal/config"
	"live_chat_server/internal/service/chat"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler 实时连接处理器
type WsHandler struct {
	manager *chat.Manager
	cfg     config.WebSocketConfig
}

// NewWsHandler 创建实时连接处理器
func NewWsHandler(manager *chat.Manager, cfg config.WebSocketConfig) *WsHandler {
	return &WsHandler{manager: manager, cfg: cfg}
}

// Connect 认证并升级为 WebSocket
// GET /ws?token=xxx，也接受 Authorization: Bearer xxx
// 认证失败时不升级，直接返回 401
func (h *WsHandler) Connect(c *gin.Context) {
	user, err := h.manager.Authenticate(handshakeToken(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	conn, err := chat.Upgrade(c.Writer, c.Request, user.Uuid, h.cfg)
	if err != nil {
		// Upgrade 失败时 gorilla 已经写回了错误响应
		zap.L().Warn("websocket upgrade failed", zap.String("user_id", user.Uuid), zap.Error(err))
		return
	}
	h.manager.ServeWs(conn, user)
}

func handshakeToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
