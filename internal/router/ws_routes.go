// Package router 提供 HTTP 路由注册
// 本文件定义实时连接的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册实时连接入口
// 请求示例: ws://host:port/ws?token=<access token>
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", rt.handlers.Ws.Connect)
}
