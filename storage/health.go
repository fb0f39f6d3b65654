package storage

import (
	"context"
	"errors"
	"fmt"

	"Pantiss/storage/database"
	"Pantiss/storage/mq"
	"Pantiss/storage/redis"
)

// Ping 检查已启用的后端，返回所有失败项
func Ping(ctx context.Context) error {
	var errs []error

	if err := redis.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}
	if err := database.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("postgres: %w", err))
	}
	if !mq.Healthy() {
		errs = append(errs, errors.New("rabbitmq: connection closed"))
	}

	return errors.Join(errs...)
}
