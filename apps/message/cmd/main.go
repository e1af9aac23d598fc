package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"MarketServer/apps/message/internal/dto"
	"MarketServer/apps/message/internal/handler"
	"MarketServer/apps/message/internal/middleware"
	"MarketServer/apps/message/internal/repository"
	"MarketServer/apps/message/internal/router"
	"MarketServer/apps/message/internal/service"
	"MarketServer/apps/message/mq"
	"MarketServer/config"
	"MarketServer/model"
	"MarketServer/pkg/async"
	"MarketServer/pkg/database"
	"MarketServer/pkg/kafka"
	"MarketServer/pkg/logger"
	pkgredis "MarketServer/pkg/redis"
	"MarketServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（yaml/json），为空只使用默认值和环境变量")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.Build(cfg.Logger)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	logger.ReplaceGlobal(zl)
	defer zl.Sync()

	// 3. 初始化雪花算法
	if err := util.InitSnowflake(cfg.Server.NodeID); err != nil {
		logger.Fatal(ctx, "初始化雪花算法失败", logger.ErrorField("error", err))
	}

	// 4. 初始化数据库
	db, err := database.Build(cfg.Database)
	if err != nil {
		logger.Fatal(ctx, "初始化数据库失败", logger.ErrorField("error", err))
	}
	database.ReplaceGlobal(db)
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error(context.Background(), "关闭数据库失败", logger.ErrorField("error", err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db,
			&model.User{}, &model.UserProfile{},
			&model.Thread{}, &model.ThreadParticipant{},
			&model.Message{}, &model.ThreadRead{}, &model.MessageFlag{},
		); err != nil {
			logger.Fatal(ctx, "数据库迁移失败", logger.ErrorField("error", err))
		}
	}

	// 5. 初始化 Redis，失败时降级为只用数据库
	var redisClient *goredis.Client
	if client, err := pkgredis.Build(cfg.Redis); err != nil {
		logger.Warn(ctx, "Redis 初始化失败，降级为 DB-Only 模式", logger.ErrorField("error", err))
	} else {
		redisClient = client
		pkgredis.ReplaceGlobal(client)
		logger.Info(ctx, "Redis 初始化成功", logger.String("addr", cfg.Redis.Addr))
		defer client.Close()
	}

	// 6. 初始化协程池（缓存失效等旁路任务）
	if err := async.Init(cfg.Async); err != nil {
		logger.Fatal(ctx, "初始化协程池失败", logger.ErrorField("error", err))
	}
	defer func() {
		if err := async.Release(); err != nil {
			logger.Warn(context.Background(), "协程池释放超时", logger.ErrorField("error", err))
		}
	}()

	// 7. 初始化缓存重试链路（仅在 Redis 与 Kafka 都可用时启动）
	if redisClient != nil && cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.RedisRetryTopic)
		mq.SetGlobalProducer(producer)

		reader := kafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.RedisRetryTopic, cfg.Kafka.ConsumerConfig)
		consumer := mq.NewRedisRetryConsumer(reader, redisClient, producer, cfg.Kafka.ConsumerConfig.RetryBackoff)

		go func() {
			logger.Info(ctx, "Redis 重试消费者启动",
				logger.String("topic", cfg.Kafka.RedisRetryTopic),
				logger.String("group_id", cfg.Kafka.ConsumerConfig.GroupID),
			)
			if err := consumer.Start(ctx); err != nil {
				logger.Error(ctx, "Redis 重试消费者运行错误", logger.ErrorField("error", err))
			}
		}()

		defer func() {
			mq.SetGlobalProducer(nil)
			if err := consumer.Close(); err != nil {
				logger.Error(context.Background(), "关闭 Redis 重试消费者失败", logger.ErrorField("error", err))
			}
			if err := producer.Close(); err != nil {
				logger.Error(context.Background(), "关闭 Kafka Producer 失败", logger.ErrorField("error", err))
			}
		}()
	}

	// 8. 组装依赖
	threadRepo := repository.NewThreadRepository(db)
	messageRepo := repository.NewMessageRepository(db, redisClient)
	readRepo := repository.NewReadRepository(db, redisClient)
	flagRepo := repository.NewFlagRepository(db)
	userRepo := repository.NewUserRepository(db, redisClient)

	messagingService := service.NewMessagingService(threadRepo, messageRepo, readRepo, userRepo)
	moderationService := service.NewModerationService(threadRepo, messageRepo, flagRepo)
	userService := service.NewUserService(userRepo)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err = middleware.NewRateLimiter(cfg.RateLimit, redisClient)
		if err != nil {
			logger.Fatal(ctx, "初始化限流器失败", logger.ErrorField("error", err))
		}
	}

	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal(ctx, "注册参数校验规则失败", logger.ErrorField("error", err))
	}
	gin.SetMode(cfg.Server.Mode)

	engine := router.InitRouter(router.Options{
		Auth:              cfg.Auth,
		RequestTimeout:    cfg.Server.RequestTimeout,
		RateLimiter:       limiter,
		UserService:       userService,
		MessageHandler:    handler.NewMessageHandler(messagingService),
		UserHandler:       handler.NewUserHandler(userService),
		ModerationHandler: handler.NewModerationHandler(moderationService),
	})

	// 9. 启动 HTTP 服务与独立的 Metrics 服务
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info(ctx, "消息服务启动", logger.String("address", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "HTTP 服务异常退出", logger.ErrorField("error", err))
			stop()
		}
	}()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metricsMux}
		go func() {
			logger.Info(ctx, "Metrics HTTP Server 启动", logger.String("address", cfg.Server.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "Metrics HTTP Server 启动失败", logger.ErrorField("error", err))
			}
		}()
	}

	// 10. 等待退出信号，优雅关闭
	<-ctx.Done()
	logger.Info(context.Background(), "收到退出信号，开始关闭消息服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "HTTP 服务关闭失败", logger.ErrorField("error", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Metrics 服务关闭失败", logger.ErrorField("error", err))
		}
	}

	logger.Info(context.Background(), "消息服务已退出")
}
