package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"Pantiss/pkg/errors"
	"Pantiss/pkg/logger"
	"Pantiss/pkg/response"
	"Pantiss/storage"
)

// Health 探活，同时检查已启用的存储后端
// GET /healthz
func Health(ctx context.Context, c *app.RequestContext) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := storage.Ping(pingCtx); err != nil {
		logger.Logger.Warn("Health check failed", zap.Error(err))
		response.ErrorWithDetails(ctx, c, errors.Unavailable, map[string]interface{}{"reason": err.Error()})
		return
	}
	response.Success(ctx, c, map[string]string{"status": "ok"})
}
