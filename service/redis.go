package service

import (
	"context"
	"errors"
	"time"

	"github.com/mzterwalexzyy/bandana-editor/config"
	"github.com/mzterwalexzyy/bandana-editor/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const compositeKeyPrefix = "composite:"

// ResultCache stores encoded composites by key. A miss is (nil, nil).
type ResultCache interface {
	GetComposite(ctx context.Context, key string) ([]byte, error)
	SetComposite(ctx context.Context, key string, data []byte) error
}

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetComposite returns the cached encoded image for key.
func (s *RedisService) GetComposite(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, compositeKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// SetComposite caches an encoded image under key for the configured TTL.
func (s *RedisService) SetComposite(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, compositeKeyPrefix+key, data, s.ttl).Err(); err != nil {
		utils.Logger.Debug("redis set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
