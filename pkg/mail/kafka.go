package mail

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"

	"campus-feedback/backend/config"
)

// ────────────────────── 生产者 ──────────────────────

// KafkaSender 将邮件写入 Kafka，由 cmd/mailer 消费后经 SMTP 投递
type KafkaSender struct {
	writer *kafka.Writer
}

// NewKafkaSender 创建 Kafka 邮件生产者
func NewKafkaSender(cfg *config.KafkaConfig) *KafkaSender {
	transport := &kafka.Transport{}
	if cfg.Username != "" {
		transport.SASL = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	}
	if cfg.TLS {
		transport.TLS = &tls.Config{}
	}

	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Transport:    transport,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Send 序列化邮件并写入队列，以收件人作为分区键
func (s *KafkaSender) Send(ctx context.Context, to, subject, body string) error {
	value, err := json.Marshal(Message{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("序列化邮件失败: %w", err)
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(to),
		Value: value,
		Time:  time.Now(),
	})
}

// Close 关闭生产者
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

// ────────────────────── 消费者 ──────────────────────

// Relay 从 Kafka 读取邮件并交给下游 Sender 投递
type Relay struct {
	reader  *kafka.Reader
	sender  Sender
	timeout time.Duration
	logger  *zap.Logger
}

// NewRelay 创建邮件中继消费者
func NewRelay(cfg *config.KafkaConfig, sender Sender, timeout time.Duration, logger *zap.Logger) *Relay {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.Username != "" {
		dialer.SASLMechanism = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	}
	if cfg.TLS {
		dialer.TLS = &tls.Config{}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	return &Relay{reader: reader, sender: sender, timeout: timeout, logger: logger}
}

// Run 循环消费直到 ctx 取消；单条邮件投递失败只记录日志
func (r *Relay) Run(ctx context.Context) error {
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			r.logger.Warn("读取邮件队列失败", zap.Error(err))
			continue
		}

		if err := r.handle(ctx, msg.Value); err != nil {
			r.logger.Warn("投递邮件失败",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (r *Relay) handle(ctx context.Context, value []byte) error {
	var m Message
	if err := json.Unmarshal(value, &m); err != nil {
		return fmt.Errorf("解析邮件消息失败: %w", err)
	}
	if m.To == "" {
		return errors.New("邮件缺少收件人")
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.sender.Send(sendCtx, m.To, m.Subject, m.Body); err != nil {
		return err
	}
	r.logger.Info("邮件已投递", zap.String("to", m.To), zap.String("subject", m.Subject))
	return nil
}

// Close 关闭消费者
func (r *Relay) Close() error {
	return r.reader.Close()
}
