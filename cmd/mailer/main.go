package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"campus-feedback/backend/config"
	applogger "campus-feedback/backend/pkg/logger"
	"campus-feedback/backend/pkg/mail"
)

// mailer 消费 mail.kafka.topic 中的邮件并通过 SMTP 投递
// 与 server 的 mail.driver=kafka 配合使用
func main() {
	configPath := pflag.StringP("config", "c", "", "配置文件路径（YAML），为空时只读取环境变量")
	dryRun := pflag.Bool("dry-run", false, "只记录日志，不真正发送邮件")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(cfg.Mail.Kafka.Brokers) == 0 || cfg.Mail.Kafka.Topic == "" {
		logger.Fatal("未配置 mail.kafka.brokers 或 mail.kafka.topic")
	}

	var sender mail.Sender = mail.NewSMTPSender(&cfg.Mail)
	if *dryRun {
		sender = mail.NewLogSender(logger)
	}

	relay := mail.NewRelay(&cfg.Mail.Kafka, sender, cfg.Mail.SendTimeout, logger)
	defer relay.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("邮件中继已启动",
		zap.Strings("brokers", cfg.Mail.Kafka.Brokers),
		zap.String("topic", cfg.Mail.Kafka.Topic),
		zap.String("group_id", cfg.Mail.Kafka.GroupID),
		zap.Bool("dry_run", *dryRun),
	)
	if err := relay.Run(ctx); err != nil {
		logger.Error("邮件中继异常退出", zap.Error(err))
	}
	logger.Info("邮件中继已停止")
}
