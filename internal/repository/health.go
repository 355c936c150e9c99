package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Status 单个后端的检查结果
type Status struct {
	Name    string        `json:"name"`
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
	Detail  string        `json:"detail,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// HealthChecker 每种后端实现一个
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) Status
}

// GormChecker 检查 gorm 连接 (postgres, mysql, sqlite)
type GormChecker struct {
	db *gorm.DB
}

// NewGormChecker 创建数据库检查器
func NewGormChecker(db *gorm.DB) *GormChecker {
	return &GormChecker{db: db}
}

func (c *GormChecker) Name() string {
	return c.db.Dialector.Name()
}

func (c *GormChecker) Check(ctx context.Context) Status {
	start := time.Now()
	status := Status{Name: c.Name()}

	sqlDB, err := c.db.DB()
	if err != nil {
		status.Error = err.Error()
		return status
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		status.Error = err.Error()
		status.Latency = time.Since(start)
		return status
	}

	var one int
	if err := c.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		status.Error = err.Error()
		status.Latency = time.Since(start)
		return status
	}

	stats := sqlDB.Stats()
	status.Healthy = true
	status.Latency = time.Since(start)
	status.Detail = fmt.Sprintf("open=%d in_use=%d idle=%d", stats.OpenConnections, stats.InUse, stats.Idle)
	return status
}

// RedisChecker 检查 redis 连接
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker 创建 redis 检查器
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string {
	return "redis"
}

func (c *RedisChecker) Check(ctx context.Context) Status {
	start := time.Now()
	status := Status{Name: c.Name()}

	pong, err := c.client.Ping(ctx).Result()
	status.Latency = time.Since(start)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Healthy = true
	status.Detail = pong
	return status
}

// Registry 已配置的后端检查器
type Registry struct {
	checkers []HealthChecker
	timeout  time.Duration
}

// NewRegistry 创建检查器集合
func NewRegistry(timeout time.Duration, checkers ...HealthChecker) *Registry {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Registry{checkers: checkers, timeout: timeout}
}

// Register 追加检查器
func (r *Registry) Register(c HealthChecker) {
	r.checkers = append(r.checkers, c)
}

// CheckAll 并发检查所有后端, 结果顺序与注册顺序一致
func (r *Registry) CheckAll(ctx context.Context) ([]Status, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make([]Status, len(r.checkers))
	var wg sync.WaitGroup
	for i, c := range r.checkers {
		wg.Add(1)
		go func(i int, c HealthChecker) {
			defer wg.Done()
			results[i] = c.Check(ctx)
		}(i, c)
	}
	wg.Wait()

	healthy := true
	for _, s := range results {
		if !s.Healthy {
			healthy = false
		}
	}
	return results, healthy
}
