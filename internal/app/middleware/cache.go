package middleware

import (
	"bytes"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type cacheEntry struct {
	Content     []byte
	ContentType string
	Expiration  time.Time
}

// responseCache holds GET responses keyed by path and sorted query
type responseCache struct {
	sync.RWMutex
	items  map[string]cacheEntry
	hits   int64
	misses int64
}

var cache = &responseCache{items: make(map[string]cacheEntry)}

// CacheConfig configures Cache
type CacheConfig struct {
	Expiration time.Duration
	KeyFunc    func(*gin.Context) string
}

// DefaultCacheConfig caches for one minute
var DefaultCacheConfig = CacheConfig{
	Expiration: 1 * time.Minute,
	KeyFunc:    defaultKeyFunc,
}

// defaultKeyFunc builds "path?k=v&..." with keys and values sorted.
// Keys stay readable so PurgeCacheByPrefix can match on the path.
func defaultKeyFunc(c *gin.Context) string {
	query := c.Request.URL.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(c.Request.URL.Path)
	b.WriteByte('?')
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for _, v := range values {
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
			b.WriteByte('&')
		}
	}
	return b.String()
}

// Cache serves repeated GETs from memory until they expire or a write purges them.
// Only use it on routes whose response does not depend on the caller.
func Cache(config ...CacheConfig) gin.HandlerFunc {
	cfg := DefaultCacheConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultCacheConfig.Expiration
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = DefaultCacheConfig.KeyFunc
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		now := time.Now()

		cache.RLock()
		entry, found := cache.items[key]
		cache.RUnlock()

		if found && entry.Expiration.After(now) {
			cache.Lock()
			cache.hits++
			cache.Unlock()
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, entry.ContentType, entry.Content)
			c.Abort()
			return
		}

		cache.Lock()
		cache.misses++
		cache.Unlock()

		writer := &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		if c.Writer.Status() == http.StatusOK {
			cache.Lock()
			cache.items[key] = cacheEntry{
				Content:     writer.body.Bytes(),
				ContentType: c.Writer.Header().Get("Content-Type"),
				Expiration:  now.Add(cfg.Expiration),
			}
			cache.Unlock()
		}
	}
}

// InvalidateCache purges cached entries under the given path prefixes after a successful write
func InvalidateCache(prefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusBadRequest {
			for _, p := range prefixes {
				PurgeCacheByPrefix(p)
			}
		}
	}
}

// PurgeCache empties the cache
func PurgeCache() {
	cache.Lock()
	cache.items = make(map[string]cacheEntry)
	cache.Unlock()
}

// PurgeCacheByPrefix removes entries whose key starts with prefix
func PurgeCacheByPrefix(prefix string) int {
	cache.Lock()
	defer cache.Unlock()

	removed := 0
	for key := range cache.items {
		if strings.HasPrefix(key, prefix) {
			delete(cache.items, key)
			removed++
		}
	}
	return removed
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheStats reports entry count, hit/miss counters and per-entry details
func CacheStats() map[string]interface{} {
	cache.RLock()
	defer cache.RUnlock()

	now := time.Now()
	items := make([]map[string]interface{}, 0, len(cache.items))
	for key, entry := range cache.items {
		items = append(items, map[string]interface{}{
			"key":        key,
			"size":       len(entry.Content),
			"expiration": entry.Expiration.Format(time.RFC3339),
			"expired":    entry.Expiration.Before(now),
		})
	}

	return map[string]interface{}{
		"total_items": len(cache.items),
		"hits":        cache.hits,
		"misses":      cache.misses,
		"items":       items,
	}
}

// cleanExpiredCache drops expired entries; the router runs it periodically
func cleanExpiredCache(now time.Time) int {
	cache.Lock()
	defer cache.Unlock()

	removed := 0
	for key, entry := range cache.items {
		if entry.Expiration.Before(now) {
			delete(cache.items, key)
			removed++
		}
	}
	return removed
}

// StartCacheJanitor removes expired entries every interval until stop is closed
func StartCacheJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				cleanExpiredCache(now)
			case <-stop:
				return
			}
		}
	}()
}
