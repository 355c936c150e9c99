package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blues/memberadmin/internal/logger"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
)

// Outcome 一次发送的结果, false 和 error 同样视为失败
type Outcome struct {
	Sent bool
	Err  error
}

// Dispatcher 在协程池中异步发送通知, 调用方不等待结果, 不自动重试
type Dispatcher struct {
	notifier Notifier
	pool     *ants.Pool
	timeout  time.Duration
}

// NewDispatcher 创建异步通知分发器
func NewDispatcher(notifier Notifier, poolSize int, timeout time.Duration) (*Dispatcher, error) {
	if poolSize <= 0 {
		poolSize = 4
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	pool, err := ants.NewPool(poolSize,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			logger.Error("Notification task panicked: %v", p)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification pool: %w", err)
	}

	return &Dispatcher{notifier: notifier, pool: pool, timeout: timeout}, nil
}

// ErrBusy 所有发送协程都在忙, 本次通知未提交
var ErrBusy = errors.New("notification pool is busy")

// Dispatch 提交发送任务, done 在任务结束后调用 (可为 nil).
// 协程池已满时立即返回 ErrBusy, 不等待空闲协程.
func (d *Dispatcher) Dispatch(channelID string, netProfit, valuePerShare decimal.Decimal, done func(Outcome)) error {
	err := d.pool.Submit(func() {
		outcome := d.send(channelID, netProfit, valuePerShare)
		if done != nil {
			done(outcome)
		}
	})
	if errors.Is(err, ants.ErrPoolOverload) {
		return fmt.Errorf("%w: %d workers running", ErrBusy, d.pool.Running())
	}
	return err
}

func (d *Dispatcher) send(channelID string, netProfit, valuePerShare decimal.Decimal) Outcome {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	sent, err := d.notifier.SendDividendNotification(ctx, channelID, netProfit, valuePerShare)
	if err == nil && !sent {
		err = ErrNotDelivered
	}
	if err != nil {
		logger.Warn("Dividend notification to %q failed: %v", channelID, err)
		return Outcome{Err: err}
	}
	return Outcome{Sent: true}
}

// Running 正在执行的任务数
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Release 等待正在执行的任务结束后释放协程池
func (d *Dispatcher) Release(timeout time.Duration) {
	if err := d.pool.ReleaseTimeout(timeout); err != nil {
		logger.Warn("Notification pool release: %v", err)
	}
}
