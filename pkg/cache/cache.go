// Package cache stores transformed output on disk, keyed by a digest of the
// input text and every option that shapes the output.
//
// Entries are msgpack-encoded and written atomically, so a cache shared by
// concurrent runs never exposes a partial entry. A nil *Cache is valid and
// always misses.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/yaklabco/detype/pkg/fsutil"
)

// schemaVersion changes whenever Entry changes shape; older entries miss.
const schemaVersion uint16 = 1

// Key identifies one cached output.
type Key [sha256.Size]byte

// NewKey digests parts in order. Each part is length-prefixed so that
// ("ab", "c") and ("a", "bc") differ.
func NewKey(parts ...string) Key {
	h := sha256.New()
	var n [8]byte
	binary.BigEndian.PutUint16(n[:2], schemaVersion)
	h.Write(n[:2])
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Entry is one cached output.
type Entry struct {
	Schema  uint16    `msgpack:"schema"`
	Path    string    `msgpack:"path"`
	Output  string    `msgpack:"output"`
	Created time.Time `msgpack:"created"`
}

// Cache is a directory of entries.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open opens the cache for app under $XDG_CACHE_HOME, or ~/.cache when it
// is unset.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache directory: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir opens a cache rooted at dir, creating it when needed.
func OpenDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, fsutil.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Key) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "out", hexKey[:2], hexKey+".mp")
}

// Get returns the entry stored under key. Entries written by another schema
// version are reported as misses.
func (c *Cache) Get(ctx context.Context, key Key) (*Entry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var entry Entry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if entry.Schema != schemaVersion {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put stores entry under key.
func (c *Cache) Put(ctx context.Context, key Key, entry Entry) error {
	if c == nil {
		return nil
	}
	entry.Schema = schemaVersion
	if entry.Created.IsZero() {
		entry.Created = time.Now()
	}

	data, err := msgpack.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fsutil.WriteAtomic(ctx, c.pathFor(key), data, 0); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(c.dir, "out")); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
