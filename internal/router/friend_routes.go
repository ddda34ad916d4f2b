// Package router 提供 HTTP 路由注册
// 本文件定义好友相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterFriendRoutes 注册好友相关路由 (需要认证)
func (rt *Router) RegisterFriendRoutes(rg *gin.RouterGroup) {
	friendGroup := rg.Group("/user/friends")
	{
		// ===== 查询 =====
		friendGroup.GET("", rt.handlers.Friend.List)
		friendGroup.GET("/requests", rt.handlers.Friend.Pending)

		// ===== 好友申请 =====
		friendGroup.POST("/request", rt.handlers.Friend.Request)
		friendGroup.PUT("/accept/:friendshipId", rt.handlers.Friend.Accept)

		friendGroup.DELETE("/:friendId", rt.handlers.Friend.Remove)
	}
}
