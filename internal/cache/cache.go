// Package cache redis 缓存和分布式锁, 未配置 redis 时不创建
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/blues/memberadmin/internal/config"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "memberadmin:"

// ErrLockNotObtained 锁被其他实例持有
var ErrLockNotObtained = errors.New("lock not obtained")

// Cache redis 客户端封装
type Cache struct {
	client redis.UniversalClient
	locker *redislock.Client
}

// New 连接 redis 并检查连通性
func New(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not connect to redis %s: %w", cfg.Addr, err)
	}

	return NewWithClient(client), nil
}

// NewWithClient 使用已有客户端
func NewWithClient(client redis.UniversalClient) *Cache {
	return &Cache{client: client, locker: redislock.New(client)}
}

// Client 底层客户端, 用于健康检查
func (c *Cache) Client() redis.UniversalClient {
	return c.client
}

// GetInt 读取整数, 不存在时 ok 为 false
func (c *Cache) GetInt(ctx context.Context, key string) (int, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("cached value %q for %s: %w", val, key, err)
	}
	return n, true, nil
}

// SetInt 写入整数
func (c *Cache) SetInt(ctx context.Context, key string, value int, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

// Delete 删除缓存
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, keyPrefix+key).Err()
}

// Obtain 获取分布式锁, 返回释放函数
func (c *Cache) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := c.locker.Obtain(ctx, keyPrefix+"lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return lock.Release, nil
}

// Close 关闭连接
func (c *Cache) Close() error {
	return c.client.Close()
}
