package storage

import (
	"Pantiss/config"
	"Pantiss/storage/database"
	"Pantiss/storage/mq"
	"Pantiss/storage/redis"
)

// Init 按配置初始化存储层，未启用的后端不连接
func Init() error {
	cfg := config.Cfg

	if cfg.UsesPostgres() {
		if err := database.Init(); err != nil {
			return err
		}
	}

	if cfg.UsesRedis() {
		if err := redis.Init(); err != nil {
			return err
		}
	}

	if cfg.RabbitMQEnabled {
		if err := mq.Init(); err != nil {
			return err
		}
	}

	return nil
}
