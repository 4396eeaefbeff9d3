package db

import (
	"github.com/redis/go-redis/v9"

	"github.com/promosign/spin-api/internal/config"
)

func OpenRedis(conf *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
}
