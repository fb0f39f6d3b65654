package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/logger"
	pkgredis "Pantiss/pkg/redis"
)

var (
	client  *redis.Client
	once    sync.Once
	initErr error
)

// options 向导请求都是短命令，超时比默认值收紧
func options(cfg config.Config) *redis.Options {
	return &redis.Options{
		Addr:            cfg.RedisAddr,
		Password:        cfg.RedisPassword,
		DB:              cfg.RedisDB,
		ClientName:      cfg.ServiceName,
		DialTimeout:     3 * time.Second,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		PoolTimeout:     2 * time.Second,
		MinIdleConns:    4,
		MaxRetries:      2,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// Init 连接并 ping，重复调用只生效一次
func Init() error {
	once.Do(func() {
		cfg := config.Cfg
		c := redis.NewClient(options(cfg))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			initErr = fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
			return
		}

		if cfg.OTelEnabled || cfg.PrometheusEnabled {
			pkgredis.InstrumentRedisClient(c, cfg.ServiceName, cfg.RedisDB)
		}

		client = c
		logger.Logger.Info("Redis initialized",
			zap.String("addr", cfg.RedisAddr),
			zap.Int("db", cfg.RedisDB),
			zap.String("prefix", cfg.RedisPrefix),
		)
	})

	return initErr
}

func Client() *redis.Client {
	if client == nil {
		panic("redis client not initialized, call redis.Init() first")
	}
	return client
}

// Ping 健康检查用，未启用时返回 nil
func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Key 拼接带前缀的 key，空段跳过：pantiss:wizard:{id}
func Key(parts ...string) string {
	segs := make([]string, 0, len(parts)+1)
	prefix := config.Cfg.RedisPrefix
	if prefix == "" {
		prefix = "pantiss"
	}
	segs = append(segs, prefix)
	for _, part := range parts {
		if part != "" {
			segs = append(segs, part)
		}
	}
	return strings.Join(segs, ":")
}
