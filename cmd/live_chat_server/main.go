package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"live_chat_server/internal/config"
	dao "live_chat_server/internal/dao/mysql"
	myredis "live_chat_server/internal/dao/redis"
	"live_chat_server/internal/handler"
	"live_chat_server/internal/https_server"
	"live_chat_server/internal/infrastructure/logger"
	"live_chat_server/internal/service"
	"live_chat_server/internal/service/chat"
	"live_chat_server/pkg/util/jwt"
	"live_chat_server/pkg/util/snowflake"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	if conf.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("参数校验翻译器初始化失败", zap.Error(err))
	}

	// 3. 初始化数据库
	repos, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	cache, err := myredis.Init(&conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	defer func() { _ = cache.Close() }()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 与 ID 生成器
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 6. 实时投递：在线目录 -> 房间路由 -> 消息代理
	presence := chat.NewPresenceDirectory()
	rooms := chat.NewRoomRouter(presence)
	var broker chat.MessageBroker
	if conf.KafkaConfig.MessageMode == "kafka" {
		broker = chat.NewKafkaBroker(rooms, conf.KafkaConfig, conf.MainConfig.NodeID)
	} else {
		broker = chat.NewChannelBroker(rooms)
	}
	zap.L().Info("消息代理初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 7. 初始化 Service 层 (依赖注入)
	svcs := service.NewServices(repos, cache, broker)
	manager := chat.NewManager(chat.ManagerConfig{
		Presence: presence,
		Rooms:    rooms,
		Broker:   broker,
		Repos:    repos,
		Cache:    cache,
		Dispatcher: chat.NewDispatcher(chat.Engines{
			Message: svcs.Message,
			Friend:  svcs.Friend,
			Signal:  svcs.Signal,
		}),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 上次进程遗留的在线标志在接受连接之前清零
	if err := manager.ResetPresence(ctx); err != nil {
		zap.L().Fatal("在线状态对账失败", zap.Error(err))
	}

	// 8. 初始化 HTTP 服务器
	engine := https_server.Init(handler.NewHandlers(svcs, manager, conf.WebSocketConfig), conf.MainConfig)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("HTTP 服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return broker.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("关闭服务器...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		return errors.Join(err, broker.Close())
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("服务异常退出", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
