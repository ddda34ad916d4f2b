package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册私聊消息相关路由 (需要认证)
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.GET("/conversations", rt.handlers.Message.Conversations)
		messageGroup.GET("/conversation/:userId", rt.handlers.Message.Conversation)
		messageGroup.POST("/send", rt.handlers.Message.Send)
		messageGroup.PUT("/read", rt.handlers.Message.MarkRead)
		messageGroup.DELETE("/:messageId", rt.handlers.Message.Delete)
	}
}
