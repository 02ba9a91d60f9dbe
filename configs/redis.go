package configs

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient ต่อ redis สำหรับ cache เมนู public
// คืน nil ถ้าไม่ได้ตั้ง REDIS_ADDR หรือต่อไม่ติด (cache เป็น optional)
func NewRedisClient(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, menu cache disabled: %v", err)
		return nil
	}
	log.Println("redis connected:", cfg.RedisAddr)
	return rdb
}
