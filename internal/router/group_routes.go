// Package router 提供 HTTP 路由注册
// 本文件定义群组相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterGroupRoutes 注册群组相关路由 (需要认证)
// 包括群组创建、查询、群消息和成员管理
func (rt *Router) RegisterGroupRoutes(rg *gin.RouterGroup) {
	groupGroup := rg.Group("/group")
	{
		// ===== 群组 =====
		groupGroup.POST("/create", rt.handlers.Group.CreateGroup)
		groupGroup.GET("", rt.handlers.Group.MyGroups)
		groupGroup.GET("/:groupId", rt.handlers.Group.GetGroupDetails)
		groupGroup.DELETE("/:groupId/leave", rt.handlers.Group.LeaveGroup)

		// ===== 群消息 =====
		groupGroup.GET("/:groupId/messages", rt.handlers.Group.GetGroupMessages)
		groupGroup.POST("/message", rt.handlers.Group.SendMessage)

		// ===== 成员管理 =====
		groupGroup.POST("/members/add", rt.handlers.Group.AddMember)
		groupGroup.POST("/members/remove", rt.handlers.Group.RemoveMember)
	}
}
