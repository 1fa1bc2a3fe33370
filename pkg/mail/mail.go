// Package mail 邮件投递
//
// 业务层只依赖 Sender 接口；Dispatcher 负责异步、尽力而为的发送，失败仅记录 WARN 日志。
package mail

import (
	"context"

	"go.uber.org/zap"
)

// Message 一封待发送的邮件
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender 仅记录日志，不实际发送（开发环境）
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender 创建日志发送器
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send 记录邮件内容
func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("邮件（未实际发送）",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
