package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"monstager/configs"
)

func ConnectRedis(cfg configs.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: "",
		DB:       0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	return client
}

// RedisStorage adapts a redis client to fiber.Storage, so the rate-limiter
// middleware keeps its counters in Redis and survives restarts.
type RedisStorage struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client, ctx: context.Background()}
}

func (s *RedisStorage) Get(key string) ([]byte, error) {
	val, err := s.client.Get(s.ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.client.Set(s.ctx, key, val, exp).Err()
}

func (s *RedisStorage) Delete(key string) error {
	return s.client.Del(s.ctx, key).Err()
}

func (s *RedisStorage) Reset() error {
	return s.client.FlushDB(s.ctx).Err()
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
