package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketServer/config"

	goredis "github.com/redis/go-redis/v9"
)

var (
	global   *goredis.Client
	globalMu sync.RWMutex
)

// Client 返回全局 Redis 客户端（未初始化或降级时为 nil）
func Client() *goredis.Client {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// ReplaceGlobal 设置全局 Redis 客户端
func ReplaceGlobal(c *goredis.Client) {
	globalMu.Lock()
	global = c
	globalMu.Unlock()
}

// Build 创建客户端并 PING 一次，失败时关闭连接返回错误，由调用方决定是否降级
func Build(cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
