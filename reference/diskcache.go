package reference

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// diskCache persists fetched reference-service responses to disk so a
// second run against the same rule version/category/dictionary doesn't
// re-hit the network. Adapted from the teacher's ruleset bundle cache:
// same entry-file-per-key shape and TTL-based expiry, but keyed by a plain
// string (version/category/dict-kind) instead of a RulesetSpec, and storing
// the raw JSON payload directly instead of a path to an extracted bundle.
type diskCache struct {
	dir string
	ttl time.Duration
}

type cacheEntry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// newDiskCache returns a cache rooted at dir, or nil if dir is empty - a
// nil *diskCache is a valid no-op cache, checked by its methods below.
func newDiskCache(dir string, ttl time.Duration) (*diskCache, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &diskCache{dir: dir, ttl: ttl}, nil
}

func (c *diskCache) get(key string, dest any) bool {
	if c == nil {
		return false
	}
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return false
	}
	if time.Now().After(entry.ExpiresAt) {
		return false
	}
	if err := json.Unmarshal(entry.Payload, dest); err != nil {
		return false
	}
	return true
}

func (c *diskCache) set(key string, value any) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache payload: %w", err)
	}
	entry := cacheEntry{
		Key:       key,
		Payload:   payload,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(c.ttl),
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(key), data, 0o644)
}

func (c *diskCache) entryPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, fmt.Sprintf("%x.json", sum))
}
