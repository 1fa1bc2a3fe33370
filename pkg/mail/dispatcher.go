package mail

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher 尽力而为的异步邮件派发
// 发送在独立 goroutine 中执行，使用自身超时，不受请求上下文取消影响；
// 失败仅记录 WARN，绝不回传给调用方。
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewDispatcher 创建派发器，timeout<=0 时使用 15s
func NewDispatcher(sender Sender, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{sender: sender, timeout: timeout, logger: logger}
}

// Dispatch 异步发送邮件
func (d *Dispatcher) Dispatch(to, subject, body string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Warn("邮件发送 panic", zap.String("to", to), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, to, subject, body); err != nil {
			d.logger.Warn("邮件发送失败",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}

// Wait 等待所有在途邮件发送完成（优雅关闭时调用）
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
