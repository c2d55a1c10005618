package registrar

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const agreementKeyPrefix = "registrar:agreements:"

// AgreementCacheTTL bounds how long agreement keys are reused before the
// registrar is asked again.
var AgreementCacheTTL = 15 * time.Minute

// AgreementSource is the slice of the registrar client the cache wraps.
type AgreementSource interface {
	Agreements(ctx context.Context, tlds []string, privacy bool) ([]Agreement, error)
}

// CachedAgreements is a Redis-backed read-through cache for TLD agreements.
// Agreement text changes rarely but is required on every purchase, so the
// cache removes one registrar round trip from the hot path. Cache failures
// fall through to the registrar.
type CachedAgreements struct {
	source AgreementSource
	client *redis.Client
	logger *slog.Logger
}

// NewCachedAgreements wraps source with a Redis cache.
func NewCachedAgreements(source AgreementSource, client *redis.Client, logger *slog.Logger) *CachedAgreements {
	return &CachedAgreements{source: source, client: client, logger: logger}
}

func (c *CachedAgreements) Agreements(ctx context.Context, tlds []string, privacy bool) ([]Agreement, error) {
	key := cacheKey(tlds, privacy)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var agreements []Agreement
		if err := json.Unmarshal(data, &agreements); err == nil {
			return agreements, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("agreement cache read failed", "key", key, "error", err)
	}

	agreements, err := c.source.Agreements(ctx, tlds, privacy)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(agreements); err == nil {
		if err := c.client.Set(ctx, key, payload, AgreementCacheTTL).Err(); err != nil {
			c.logger.Warn("agreement cache write failed", "key", key, "error", err)
		}
	}
	return agreements, nil
}

// CachedClient is a registrar client whose agreement lookups go through the
// Redis cache; every other call passes straight to the wrapped client.
type CachedClient struct {
	*Client
	cache *CachedAgreements
}

// WithAgreementCache wraps client so Agreements is served read-through from
// Redis.
func WithAgreementCache(client *Client, redisClient *redis.Client, logger *slog.Logger) *CachedClient {
	return &CachedClient{
		Client: client,
		cache:  NewCachedAgreements(client, redisClient, logger),
	}
}

func (c *CachedClient) Agreements(ctx context.Context, tlds []string, privacy bool) ([]Agreement, error) {
	return c.cache.Agreements(ctx, tlds, privacy)
}

func cacheKey(tlds []string, privacy bool) string {
	sorted := append([]string(nil), tlds...)
	sort.Strings(sorted)
	key := agreementKeyPrefix + strings.Join(sorted, ",")
	if privacy {
		key += ":privacy"
	}
	return key
}
