package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/blues/memberadmin/internal/cache"
	"github.com/blues/memberadmin/internal/logger"
	"github.com/blues/memberadmin/internal/model"
	"github.com/go-co-op/gocron/v2"
)

const (
	cycleCloseLock = "cycle-close"
	settledBy      = "scheduler"
)

// CycleSettler 结算所有已满三天且未结算的周期, 由 logic.SettlementLogic 实现
type CycleSettler interface {
	SettleDue(ctx context.Context, settledBy string) ([]model.DividendModel, error)
}

// Locker 多实例部署时保证只有一个实例执行, 由 cache.Cache 实现
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// CycleCloseJob 自动结算任务
type CycleCloseJob struct {
	settler  CycleSettler
	locker   Locker
	interval time.Duration
	timeout  time.Duration
}

// NewCycleCloseJob locker 为 nil 时不加锁
func NewCycleCloseJob(settler CycleSettler, locker Locker, interval time.Duration) *CycleCloseJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CycleCloseJob{
		settler:  settler,
		locker:   locker,
		interval: interval,
		timeout:  interval,
	}
}

// GetName 获取任务名称
func (j *CycleCloseJob) GetName() string {
	return "dividend_cycle_close"
}

// GetSchedule 获取调度配置
func (j *CycleCloseJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *CycleCloseJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if j.locker != nil {
		release, err := j.locker.Obtain(ctx, cycleCloseLock, j.timeout)
		if errors.Is(err, cache.ErrLockNotObtained) {
			logger.Debug("Cycle close skipped, another instance holds the lock")
			return
		}
		if err != nil {
			logger.Error("Failed to obtain cycle close lock: %v", err)
			return
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				logger.Warn("Failed to release cycle close lock: %v", err)
			}
		}()
	}

	dividends, err := j.settler.SettleDue(ctx, settledBy)
	for _, d := range dividends {
		logger.Info("Settled dividend cycle %d, value per share %s", d.CycleNumber, d.ValuePerShare.StringFixed(4))
	}
	if err != nil {
		logger.Error("Cycle close finished with errors: %v", err)
		return
	}
	logger.Info("Cycle close completed. Settled %d cycles", len(dividends))
}
