package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/errors"
	"Pantiss/pkg/logger"
	"Pantiss/pkg/response"
	"Pantiss/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口（秒）
	Window int
	// 时间窗口内最大请求数
	MaxRequests int
	// 限流键前缀
	KeyPrefix string
	// 超过限制后禁止访问的时间（秒），0 表示不封禁
	BlockDuration int
}

// WizardRateLimitConfig 向导操作，按 IP；上限由 RATE_LIMIT_RPS 换算
func WizardRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Window:      60,
		MaxRequests: config.Cfg.RateLimitRPS * 60,
		KeyPrefix:   "rate:wizard",
	}
}

// CodeRateLimitConfig 发送验证码，每日上限之外再挡一层突发
var CodeRateLimitConfig = RateLimitConfig{
	Window:        60,
	MaxRequests:   5,
	KeyPrefix:     "rate:code",
	BlockDuration: 600,
}

// AuthRateLimitConfig 刷新令牌
var AuthRateLimitConfig = RateLimitConfig{
	Window:        60,
	MaxRequests:   10,
	KeyPrefix:     "rate:auth",
	BlockDuration: 900,
}

// RateLimiter 基于 zset 的滑动窗口
type RateLimiter struct {
	config RateLimitConfig
	client redislib.UniversalClient
	now    func() time.Time
}

func NewRateLimiter(cfg RateLimitConfig, client redislib.UniversalClient) *RateLimiter {
	return &RateLimiter{
		config: cfg,
		client: client,
		now:    time.Now,
	}
}

func (rl *RateLimiter) key(identifier string) string {
	return redis.Key(rl.config.KeyPrefix, identifier)
}

func (rl *RateLimiter) blockKey(identifier string) string {
	return redis.Key(rl.config.KeyPrefix, "block", identifier)
}

// Allow 记录一次请求并返回窗口内计数
func (rl *RateLimiter) Allow(ctx context.Context, identifier string) (bool, int, error) {
	key := rl.key(identifier)
	now := rl.now()
	windowStart := now.Add(-time.Duration(rl.config.Window) * time.Second)

	pipe := rl.client.TxPipeline()

	// 先移除窗口外的记录
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))

	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})

	zcardCmd := pipe.ZCard(ctx, key)

	pipe.Expire(ctx, key, time.Duration(rl.config.Window+10)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= rl.config.MaxRequests, count, nil
}

func (rl *RateLimiter) Block(ctx context.Context, identifier string) error {
	if rl.config.BlockDuration <= 0 {
		return nil
	}
	return rl.client.Set(ctx, rl.blockKey(identifier), "1", time.Duration(rl.config.BlockDuration)*time.Second).Err()
}

func (rl *RateLimiter) IsBlocked(ctx context.Context, identifier string) (bool, error) {
	if rl.config.BlockDuration <= 0 {
		return false, nil
	}
	result, err := rl.client.Exists(ctx, rl.blockKey(identifier)).Result()
	return result > 0, err
}

// RateLimitMiddleware 按客户端 IP 限流；RATE_LIMIT_ENABLED 关闭时直接放行。
// Redis 故障时放行并记录日志，不影响注册流程。
func RateLimitMiddleware(cfg RateLimitConfig) app.HandlerFunc {
	if !config.Cfg.RateLimitEnabled || cfg.MaxRequests <= 0 {
		return func(ctx context.Context, c *app.RequestContext) {
			c.Next(ctx)
		}
	}

	limiter := NewRateLimiter(cfg, redis.Client())

	return func(ctx context.Context, c *app.RequestContext) {
		identifier := "ip:" + c.ClientIP()

		blocked, err := limiter.IsBlocked(ctx, identifier)
		if err != nil {
			logger.Logger.Error("Failed to check block status", zap.Error(err))
			c.Next(ctx)
			return
		}
		if blocked {
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		allowed, count, err := limiter.Allow(ctx, identifier)
		if err != nil {
			logger.Logger.Error("Failed to check rate limit", zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Response.Header.Set("X-RateLimit-Reset", strconv.FormatInt(limiter.now().Add(time.Duration(cfg.Window)*time.Second).Unix(), 10))

		if !allowed {
			if err := limiter.Block(ctx, identifier); err != nil {
				logger.Logger.Error("Failed to block client", zap.Error(err))
			}
			logger.Logger.Warn("Rate limit exceeded",
				zap.String("prefix", cfg.KeyPrefix),
				zap.String("client_ip", c.ClientIP()),
				zap.Int("count", count),
			)
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}

func WizardRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(WizardRateLimitConfig())
}

func CodeRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(CodeRateLimitConfig)
}

func AuthRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(AuthRateLimitConfig)
}
