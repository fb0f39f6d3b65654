package middleware

import (
	"fmt"

	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/logger"
)

// Init 构建 JWT 中间件，须在 token.Init 之后、路由注册之前调用。
// 限流和 CSRF 在注册路由时按配置构建，这里只记录开关。
func Init() error {
	if err := initAuthMiddleware(); err != nil {
		return fmt.Errorf("init auth middleware: %w", err)
	}

	cfg := config.Cfg
	logger.Component("middleware").Info("Middlewares ready",
		zap.Bool("rate_limit", cfg.RateLimitEnabled),
		zap.Int("rate_limit_rps", cfg.RateLimitRPS),
		zap.Bool("csrf", cfg.CSRFEnabled),
	)
	return nil
}
