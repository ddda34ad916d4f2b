package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户相关路由 (需要认证)
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.GET("/profile", rt.handlers.User.GetProfile)
		userGroup.GET("/search", rt.handlers.User.Search)
		userGroup.GET("/online", rt.handlers.User.Online)
	}
}
