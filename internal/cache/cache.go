// Package cache stores classifier results so repeated complaints skip the provider.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/civictriage/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ClassificationKey derives the cache key for one classification call.
// Normalized text is hashed so the key is filesystem-safe.
func ClassificationKey(provider, modelName, normalized string) string {
	hash := sha256.Sum256([]byte(provider + "\x00" + modelName + "\x00" + normalized))
	return "civictriage:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg. Returns nil when caching is disabled.
// An empty disk dir gives a memory-only cache.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.DiskDir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.DiskDir, cfg.DiskTTL)
}

// GetJSON decodes a cached value into v
func GetJSON(c Cache, key string, v interface{}) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v and stores it
func SetJSON(c Cache, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(key, data, ttl)
}
