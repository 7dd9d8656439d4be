package service

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ashwinyue/datamimic/internal/config"
	"github.com/ashwinyue/datamimic/internal/repository"
	"github.com/ashwinyue/datamimic/internal/service/cache"
	"github.com/ashwinyue/datamimic/internal/service/dataset"
	"github.com/ashwinyue/datamimic/internal/service/generation"
	"github.com/ashwinyue/datamimic/internal/service/synthesis"
)

// Services 服务集合
type Services struct {
	Dataset    *dataset.Service
	Generation *generation.Service

	// 配置
	Config *config.Config
}

// NewServices 创建所有服务，redisClient 为 nil 时不启用缓存
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (*Services, error) {
	backend, err := synthesis.NewProcessBackend(cfg.Synthesis, logger.Named("synthesis"))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis backend: %w", err)
	}
	return NewServicesWithBackend(repo, cfg, backend, redisClient, logger), nil
}

// NewServicesWithBackend 使用指定的合成后端创建服务
func NewServicesWithBackend(repo *repository.Repositories, cfg *config.Config, backend synthesis.Backend, redisClient *redis.Client, logger *zap.Logger) *Services {
	generationCache := cache.NewGenerationCache(redisClient, cfg.Redis.TTL, logger.Named("cache"))

	return &Services{
		Dataset:    dataset.NewService(repo, generationCache, logger.Named("dataset")),
		Generation: generation.NewService(repo, backend, generationCache, logger.Named("generation")),
		Config:     cfg,
	}
}

// NewRedisClient 按配置创建 Redis 客户端，未启用时返回 nil
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
