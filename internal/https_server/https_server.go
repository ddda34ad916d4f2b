// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"live_chat_server/internal/config"
	"live_chat_server/internal/handler"
	"live_chat_server/internal/infrastructure/logger"
	"live_chat_server/internal/infrastructure/middleware"
	"live_chat_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎并返回
// 配置顺序：日志与恢复中间件 -> CORS -> 可选的 HTTPS 重定向 -> 业务路由
func Init(handlers *handler.Handlers, cfg config.MainConfig) *gin.Engine {
	// 不使用 gin.Default()，以便完全控制中间件
	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 终结 TLS 时保持关闭
	if cfg.TlsRedirect {
		engine.Use(middleware.TlsHandler(cfg.Host, cfg.Port))
	}

	router.NewRouter(handlers).RegisterRoutes(engine)
	return engine
}
