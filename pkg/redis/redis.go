package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nanpipat/hr-rebase/config"
)

// Client Redis 客户端封装
// 当前用于 Token 黑名单与对账批次去重锁；后续可扩展缓存等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 对账批次去重锁 ──
//
// 仅做尽力而为的去重，减少定时任务与人工触发撞车时的无谓扫描；
// 正确性由考勤表 (employee_id, date) 唯一索引兜底，锁失效不影响结果。

const reconcileLockPrefix = "reconcile:lock:"

// AcquireReconcileLock 以 SetNX 获取某考勤日期的对账锁
// 返回 false 表示已有同日期批次在运行
func (c *Client) AcquireReconcileLock(ctx context.Context, date string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, reconcileLockPrefix+date, "1", ttl).Result()
}

// ReleaseReconcileLock 释放对账锁
func (c *Client) ReleaseReconcileLock(ctx context.Context, date string) error {
	return c.rdb.Del(ctx, reconcileLockPrefix+date).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
