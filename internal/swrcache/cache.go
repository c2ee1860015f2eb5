// Package swrcache caches provider listings on disk with
// stale-while-revalidate semantics. Fresh entries are served directly,
// stale ones are served while a background refresh runs, and expired
// ones are fetched synchronously.
package swrcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"nathanbeddoewebdev/dnsctl/internal/log"
)

const (
	defaultFreshTTL = 2 * time.Minute
	defaultMaxStale = 30 * time.Minute
	refreshTimeout  = 30 * time.Second

	// maxNameLen keeps file names well under common filesystem limits
	// when keys carry long TXT contents.
	maxNameLen = 96
)

// Cache provides stale-while-revalidate caching with file-backed JSON storage.
// Writes and invalidations hold a lock file in dir, so concurrent dnsctl
// processes never interleave them.
type Cache struct {
	dir      string
	freshTTL time.Duration
	maxStale time.Duration

	// epoch counts invalidations. A fetch started before an invalidation
	// must not store its result.
	epoch    atomic.Uint64
	inflight sync.WaitGroup
}

// New returns a cache rooted at dir with default TTLs.
func New(dir string) *Cache {
	return WithTTLs(dir, defaultFreshTTL, defaultMaxStale)
}

// NewDefault returns a cache rooted at the OS user cache dir.
func NewDefault() *Cache {
	return New(defaultDir())
}

// WithTTLs returns a new cache rooted at dir with custom TTLs. A
// non-positive maxStale serves stale entries regardless of age.
func WithTTLs(dir string, freshTTL, maxStale time.Duration) *Cache {
	return &Cache{dir: dir, freshTTL: freshTTL, maxStale: maxStale}
}

// GetOrFetch returns cached data using stale-while-revalidate semantics.
// A nil cache always fetches.
func GetOrFetch[T any](c *Cache, ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	if c == nil || c.dir == "" {
		return fetch(ctx)
	}

	entry, ok := readEntry[T](c, key)
	if !ok {
		return fetchAndStore(c, ctx, key, fetch)
	}

	age := time.Since(entry.FetchedAt)
	switch {
	case age < 0:
		return fetchAndStore(c, ctx, key, fetch)
	case age <= c.freshTTL:
		log.L(ctx).Debug("cache hit", zap.String("key", key), zap.Duration("age", age))
		return entry.Data, nil
	case c.maxStale <= 0 || age <= c.maxStale:
		log.L(ctx).Debug("cache stale, revalidating", zap.String("key", key), zap.Duration("age", age))
		revalidate(c, ctx, key, fetch)
		return entry.Data, nil
	}
	return fetchAndStore(c, ctx, key, fetch)
}

// Wait blocks until background refreshes finish or ctx is done. CLI
// commands call it before exiting so refreshed entries are not lost.
func (c *Cache) Wait(ctx context.Context) {
	if c == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Invalidate removes a single cached entry.
func (c *Cache) Invalidate(key string) error {
	if c == nil || c.dir == "" {
		return nil
	}
	return c.locked(func() error {
		c.epoch.Add(1)
		err := os.Remove(c.pathForKey(key))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	})
}

// InvalidatePrefix removes cached entries whose key starts with prefix.
func (c *Cache) InvalidatePrefix(prefix string) error {
	return c.removeMatching(func(name string) bool {
		return strings.HasPrefix(name, sanitizeKey(prefix))
	})
}

// Clear removes all cached entries in the cache directory.
func (c *Cache) Clear() error {
	return c.removeMatching(func(string) bool { return true })
}

func (c *Cache) removeMatching(match func(name string) bool) error {
	if c == nil || c.dir == "" {
		return nil
	}
	return c.locked(func() error {
		c.epoch.Add(1)
		entries, err := os.ReadDir(c.dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasSuffix(name, ".json") || !match(name) {
				continue
			}
			if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
		return nil
	})
}

func fetchAndStore[T any](c *Cache, ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	epoch := c.epoch.Load()
	data, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := store(c, epoch, key, data); err != nil {
		log.L(ctx).Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return data, nil
}

// revalidate refreshes key in the background. The refresh keeps the
// caller's logger but not its cancellation.
func revalidate[T any](c *Cache, ctx context.Context, key string, fetch func(context.Context) (T, error)) {
	epoch := c.epoch.Load()
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		data, err := fetch(ctx)
		if err != nil {
			log.L(ctx).Debug("cache revalidation failed", zap.String("key", key), zap.Error(err))
			return
		}
		if err := store(c, epoch, key, data); err != nil {
			log.L(ctx).Debug("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

// store writes data unless the cache was invalidated after epoch.
func store[T any](c *Cache, epoch uint64, key string, data T) error {
	return c.locked(func() error {
		if c.epoch.Load() != epoch {
			return nil
		}
		return writeEntry(c, key, Entry[T]{Data: data, FetchedAt: time.Now()})
	})
}

func readEntry[T any](c *Cache, key string) (Entry[T], bool) {
	var entry Entry[T]
	data, err := os.ReadFile(c.pathForKey(key))
	if err != nil {
		return entry, false
	}
	if err := json.Unmarshal(data, &entry); err != nil || !entry.usable(key) {
		return Entry[T]{}, false
	}
	return entry, true
}

// writeEntry replaces the entry file atomically. Callers hold the lock.
func writeEntry[T any](c *Cache, key string, entry Entry[T]) error {
	entry.Version = entryVersion
	entry.Key = key
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, c.pathForKey(key))
}

// locked runs fn holding the directory lock, creating dir first.
func (c *Cache) locked(fn func() error) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	lock := flock.New(filepath.Join(c.dir, ".lock"))
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()
	return fn()
}

func (c *Cache) pathForKey(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".json")
}

func defaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "dnsctl", "dns")
}

// sanitizeKey maps key to a file name. Dots survive so a zone is never a
// prefix of a longer zone; long keys keep their head and gain a hash.
func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}

	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, key)
	if len(name) <= maxNameLen {
		return name
	}
	sum := sha256.Sum256([]byte(key))
	return name[:maxNameLen] + "-" + hex.EncodeToString(sum[:8])
}
