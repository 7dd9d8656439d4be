// Package cache 终态生成结果的 Redis 缓存
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ashwinyue/datamimic/internal/model"
)

const (
	// Redis key 前缀
	generationKeyPrefix = "generation:"
	// 默认过期时间
	defaultTTL = time.Hour
)

// Entry 缓存条目
type Entry struct {
	Generation *model.Generation `json:"generation"`
	Evaluation *model.Evaluation `json:"evaluation"`
}

// GenerationCache 只缓存 completed/failed 的生成任务，终态记录不会再变化
// nil 接收者上的方法均为空操作
type GenerationCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewGenerationCache 创建缓存，client 为 nil 时返回 nil
func NewGenerationCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *GenerationCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationCache{redis: client, ttl: ttl, logger: logger}
}

func key(id string) string {
	return generationKeyPrefix + id
}

// Get 读取缓存，未命中或出错时返回 false
func (c *GenerationCache) Get(ctx context.Context, id string) (*Entry, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("generation cache read failed", zap.String("generation_id", id), zap.Error(err))
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Generation == nil {
		c.logger.Warn("generation cache entry corrupt", zap.String("generation_id", id), zap.Error(err))
		c.redis.Del(ctx, key(id))
		return nil, false
	}
	return &entry, true
}

// Put 写入终态生成任务，非终态直接忽略
func (c *GenerationCache) Put(ctx context.Context, generation *model.Generation, evaluation *model.Evaluation) {
	if c == nil || generation == nil || !generation.Status.Terminal() {
		return
	}
	data, err := json.Marshal(Entry{Generation: generation, Evaluation: evaluation})
	if err != nil {
		c.logger.Warn("generation cache encode failed", zap.String("generation_id", generation.ID), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key(generation.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("generation cache write failed", zap.String("generation_id", generation.ID), zap.Error(err))
	}
}

// Forget 删除缓存条目
func (c *GenerationCache) Forget(ctx context.Context, ids ...string) {
	if c == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, key(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("generation cache delete failed", zap.Strings("generation_ids", ids), zap.Error(err))
	}
}
