package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Pantiss/pkg/logger"
	"Pantiss/storage/database"
	"Pantiss/storage/mq"
	"Pantiss/storage/redis"
)

// Close 关闭已初始化的连接，未启用的后端直接跳过。
// 先关 MQ 停止收发事件，再关会话存储，最后关账号库。
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage")

	if err := mq.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close message queue", zap.Error(err))
	} else {
		logger.Logger.Info("RabbitMQ connection closed")
	}

	if err := redis.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close Redis connection", zap.Error(err))
	} else {
		logger.Logger.Info("Session store connection closed")
	}

	if err := database.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close database connection", zap.Error(err))
	} else {
		logger.Logger.Info("Account database closed")
	}

	logger.Logger.Info("Storage closed")
}
