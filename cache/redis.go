package cache

import (
	"context"
	"fmt"
	"log"

	"service-marketplace/config"

	"github.com/go-redis/redis/v8"
)

var Rdb *redis.Client

// InitRedis initializes the Redis client from configuration.
func InitRedis() error {
	cfg := config.Cfg.Redis
	Rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	_, err := Rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	log.Println("Connected to Redis successfully.")
	return nil
}
