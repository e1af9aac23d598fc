package router

import (
	"net/http"
	"time"

	"MarketServer/apps/message/internal/handler"
	"MarketServer/apps/message/internal/middleware"
	"MarketServer/apps/message/internal/service"
	"MarketServer/config"
	"MarketServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options 路由依赖
type Options struct {
	Auth           config.AuthConfig
	RequestTimeout time.Duration
	RateLimiter    *middleware.RateLimiter // nil 表示不限流

	UserService       service.IUserService
	MessageHandler    *handler.MessageHandler
	UserHandler       *handler.UserHandler
	ModerationHandler *handler.ModerationHandler
}

// InitRouter 初始化路由
func InitRouter(opts Options) *gin.Engine {
	r := gin.New()

	// 追踪中间件（生成 trace_id）
	r.Use(util.TraceLogger())

	// 客户端 IP 中间件
	r.Use(middleware.ClientIPMiddleware())

	// 恢复中间件
	r.Use(middleware.GinRecovery())

	// 日志中间件
	r.Use(middleware.GinLogger())

	// Prometheus 监控中间件
	r.Use(middleware.PrometheusMiddleware())

	// 跨域中间件
	r.Use(middleware.CorsMiddleware())

	// 健康检查（无需认证）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.TimeoutMiddleware(opts.RequestTimeout))

	// 需要认证的接口
	auth := api.Group("/auth")
	auth.Use(middleware.JWTAuthMiddleware(opts.Auth))
	auth.Use(middleware.UserRateLimitMiddleware(opts.RateLimiter))
	auth.Use(middleware.ActorMiddleware(opts.UserService))
	{
		messages := auth.Group("/messages")
		{
			messages.GET("/inbox", opts.MessageHandler.Inbox)
			messages.GET("/unread-count", opts.MessageHandler.UnreadCount)
			messages.GET("/users", opts.UserHandler.ListUsers)
			messages.GET("/users/lookup", opts.UserHandler.LookupUser)
			messages.GET("/compose/:userId", opts.MessageHandler.Compose)
			messages.POST("/compose/:userId", opts.MessageHandler.SendDirect)
			messages.GET("/threads/:threadId", opts.MessageHandler.OpenThread)
			messages.POST("/threads/:threadId/messages", opts.MessageHandler.SendToThread)
			messages.POST("/groups", opts.MessageHandler.CreateGroup)
			messages.POST("/messages/:messageId/flags", opts.ModerationHandler.FlagMessage)
		}

		// 管理员接口
		admin := auth.Group("/admin")
		admin.Use(middleware.StaffOnly())
		{
			admin.GET("/message-flags", opts.ModerationHandler.ListFlags)
			admin.POST("/message-flags/:flagId/resolve", opts.ModerationHandler.ResolveFlag)
			admin.PUT("/messages/:messageId", opts.ModerationHandler.EditMessage)
			admin.DELETE("/messages/:messageId", opts.ModerationHandler.DeleteMessage)
		}
	}

	return r
}
