package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ashwinyue/datamimic/internal/config"
	"github.com/ashwinyue/datamimic/internal/database"
	"github.com/ashwinyue/datamimic/internal/logger"
	"github.com/ashwinyue/datamimic/internal/repository"
	"github.com/ashwinyue/datamimic/internal/service"
)

const defaultConfigPath = "./configs/config.yaml"

type appContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newAppContext(configFlag *string) *appContext {
	return &appContext{configFlag: configFlag}
}

func (c *appContext) configPath() string {
	if c.configFlag != nil {
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			return path
		}
	}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultConfigPath
}

func (c *appContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(c.configPath())
	})
	return c.config, c.configErr
}

// stack 运行期依赖
type stack struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *database.DB
	redis    *redis.Client
	repos    *repository.Repositories
	services *service.Services
}

func (c *appContext) openStack() (*stack, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}

	redisClient := service.NewRedisClient(&cfg.Redis)
	repos := repository.NewRepositories(db.DB)
	services, err := service.NewServices(repos, cfg, redisClient, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init services: %w", err)
	}

	return &stack{
		cfg:      cfg,
		logger:   log,
		db:       db,
		redis:    redisClient,
		repos:    repos,
		services: services,
	}, nil
}

func (s *stack) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("close database", zap.Error(err))
	}
	_ = s.logger.Sync()
}
