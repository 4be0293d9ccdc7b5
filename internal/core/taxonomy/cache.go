// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package taxonomy

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/embershelf/embershelf/internal/platform/constants"
)

// Cache is the read-through cache for the tag catalog.
//
// The taxonomy is read on every validation pass and almost never written, so
// the hot path is served from Redis. Implementations must treat cache
// failures as misses — the repository is always the source of truth.
type Cache interface {
	GetCatalog(context context.Context, includeSensitive bool) ([]*Category, bool)
	SetCatalog(context context.Context, includeSensitive bool, catalog []*Category)
	Invalidate(context context.Context)
}

// # Redis Implementation

// redisCache stores the serialized catalog under a per-variant key.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a [Cache] backed by the shared Redis client.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func catalogKey(includeSensitive bool) string {
	if includeSensitive {
		return constants.RedisPrefixTagCatalog + "full"
	}
	return constants.RedisPrefixTagCatalog + "public"
}

func (cache *redisCache) GetCatalog(context context.Context, includeSensitive bool) ([]*Category, bool) {
	raw, err := cache.client.Get(context, catalogKey(includeSensitive)).Bytes()
	if err != nil {
		// redis.Nil is an ordinary miss; anything else degrades to a miss too.
		if !errors.Is(err, redis.Nil) {
			return nil, false
		}
		return nil, false
	}

	var catalog []*Category
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, false
	}
	return catalog, true
}

func (cache *redisCache) SetCatalog(context context.Context, includeSensitive bool, catalog []*Category) {
	raw, err := json.Marshal(catalog)
	if err != nil {
		return
	}
	cache.client.Set(context, catalogKey(includeSensitive), raw, constants.TagCatalogCacheTTL)
}

func (cache *redisCache) Invalidate(context context.Context) {
	cache.client.Del(context, catalogKey(true), catalogKey(false))
}

// # Noop Implementation

// noopCache disables caching. Used in tests and single-node development.
type noopCache struct{}

// NewNoopCache returns a [Cache] that never hits.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) GetCatalog(context.Context, bool) ([]*Category, bool) { return nil, false }
func (noopCache) SetCatalog(context.Context, bool, []*Category)       {}
func (noopCache) Invalidate(context.Context)                          {}
