// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"live_chat_server/internal/handler"
	"live_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合，各模块的注册方法挂在它上面
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 公开接口直接挂在引擎上，其余接口统一经过 JWTAuth
// 实时连接在握手时自行认证，不经过中间件
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r.Group("")) // 注册、登录、刷新
	rt.RegisterWebSocketRoutes(r.Group(""))

	private := r.Group("")
	private.Use(middleware.JWTAuth())
	{
		rt.RegisterUserRoutes(private)
		rt.RegisterFriendRoutes(private)
		rt.RegisterMessageRoutes(private)
		rt.RegisterGroupRoutes(private)
	}
}
