package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bagayi/finance-api/internal/models"
	"github.com/bagayi/finance-api/internal/routing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKey = "directory:snapshot"

// Source supplies the raw directory rows, normally the Postgres repository.
type Source interface {
	DirectoryAccounts(ctx context.Context) ([]models.Account, error)
	DirectoryCategories(ctx context.Context) ([]models.Category, error)
}

// Loader builds routing snapshots. Each request gets one snapshot resolved up
// front, so the routing decision can never race a concurrent linkage edit.
// A short-lived Redis copy keeps UI gating calls off the database.
type Loader struct {
	src                  Source
	redis                redis.Cmdable
	ttl                  time.Duration
	externalSettlementID string
}

func NewLoader(src Source, redisClient redis.Cmdable, ttl time.Duration, externalSettlementID string) *Loader {
	return &Loader{
		src:                  src,
		redis:                redisClient,
		ttl:                  ttl,
		externalSettlementID: externalSettlementID,
	}
}

type cachePayload struct {
	Accounts   []models.Account  `json:"accounts"`
	Categories []models.Category `json:"categories"`
}

// Snapshot returns a point-in-time directory, from cache when fresh.
func (l *Loader) Snapshot(ctx context.Context) (routing.Directory, error) {
	if l.redis != nil {
		val, err := l.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var payload cachePayload
			if json.Unmarshal([]byte(val), &payload) == nil {
				return routing.NewSnapshot(payload.Accounts, payload.Categories, l.externalSettlementID), nil
			}
		} else if err != redis.Nil {
			zap.L().Warn("directory cache lookup failed", zap.Error(err))
		}
	}

	accounts, err := l.src.DirectoryAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load directory accounts: %w", err)
	}
	categories, err := l.src.DirectoryCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load directory categories: %w", err)
	}

	l.cache(ctx, cachePayload{Accounts: accounts, Categories: categories})
	return routing.NewSnapshot(accounts, categories, l.externalSettlementID), nil
}

// Invalidate drops the cached snapshot, called after account/category writes.
func (l *Loader) Invalidate(ctx context.Context) {
	if l.redis == nil {
		return
	}
	if err := l.redis.Del(ctx, cacheKey).Err(); err != nil {
		zap.L().Warn("directory cache invalidation failed", zap.Error(err))
	}
}

func (l *Loader) cache(ctx context.Context, payload cachePayload) {
	if l.redis == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		zap.L().Warn("marshal directory cache", zap.Error(err))
		return
	}
	if err := l.redis.Set(ctx, cacheKey, raw, l.ttl).Err(); err != nil {
		zap.L().Warn("directory cache set failed", zap.Error(err))
	}
}
