package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"campus-feedback/backend/config"
	"campus-feedback/backend/internal/api/handler"
	"campus-feedback/backend/internal/api/router"
	"campus-feedback/backend/internal/repository"
	"campus-feedback/backend/internal/service"
	"campus-feedback/backend/pkg/database"
	"campus-feedback/backend/pkg/jwt"
	applogger "campus-feedback/backend/pkg/logger"
	"campus-feedback/backend/pkg/mail"
	"campus-feedback/backend/pkg/redis"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "配置文件路径（YAML），为空时只读取环境变量")
	seedAdmin := pflag.Bool("seed-admin", false, "按 seed.* 配置创建初始管理员后退出")
	pflag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("policy", cfg.Policy.Preset),
		zap.String("mail_driver", cfg.Mail.Driver),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、登录限流与统计缓存将不可用", zap.Error(err))
		rdb = nil
	}
	var cache service.Cache
	if rdb != nil {
		cache = rdb
		defer rdb.Close()
	}

	// 5. 邮件派发
	sender, closeSender := newMailSender(cfg, logger)
	defer closeSender()
	dispatcher := mail.NewDispatcher(sender, cfg.Mail.SendTimeout, logger)

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, cache, dispatcher, logger)

	if *seedAdmin {
		created, err := svc.Auth.SeedAdmin(context.Background())
		if err != nil {
			logger.Fatal("创建初始管理员失败", zap.Error(err))
		}
		logger.Info("初始管理员处理完成", zap.String("username", cfg.Seed.AdminUsername), zap.Bool("created", created))
		return
	}

	h := handler.NewHandler(svc)
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 等待已派发的邮件发送结束
	dispatcher.Wait()

	logger.Info("服务器已关闭")
}

// newMailSender 按 mail.driver 选择发送方式
func newMailSender(cfg *config.Config, logger *zap.Logger) (mail.Sender, func()) {
	switch cfg.Mail.Driver {
	case config.MailDriverSMTP:
		return mail.NewSMTPSender(&cfg.Mail), func() {}
	case config.MailDriverKafka:
		k := mail.NewKafkaSender(&cfg.Mail.Kafka)
		return k, func() {
			if err := k.Close(); err != nil {
				logger.Warn("关闭邮件队列失败", zap.Error(err))
			}
		}
	default:
		return mail.NewLogSender(logger), func() {}
	}
}
