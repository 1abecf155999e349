package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedEmbedder wraps an Embedder with a redis-backed vector cache. Caching
// lives at the service boundary; the evaluation core stays stateless. A nil
// redis client makes the wrapper a pass-through, and any cache failure
// degrades to a direct embed call.
type CachedEmbedder struct {
	inner  Embedder
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedEmbedder decorates inner with a redis cache using the given TTL.
func NewCachedEmbedder(inner Embedder, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedEmbedder {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &CachedEmbedder{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "embedding_cache").Logger(),
	}
}

// Embed returns a cached vector when available, otherwise delegates and stores
// the result.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.cache == nil {
		return e.inner.Embed(ctx, text)
	}

	key := cacheKey(text)

	if cached, err := e.cache.Get(ctx, key).Result(); err == nil {
		var vector []float32
		if unmarshalErr := json.Unmarshal([]byte(cached), &vector); unmarshalErr == nil && len(vector) > 0 {
			e.logger.Debug().Str("key", key).Msg("embedding cache hit")
			return vector, nil
		}
	} else if err != redis.Nil {
		e.logger.Warn().Err(err).Msg("failed to read embedding cache")
	}

	vector, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(vector); err == nil {
		if err := e.cache.Set(ctx, key, payload, e.ttl).Err(); err != nil {
			e.logger.Warn().Err(err).Msg("failed to store embedding cache")
		}
	}

	return vector, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s", hex.EncodeToString(sum[:]))
}
