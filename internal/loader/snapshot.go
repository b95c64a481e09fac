package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"fathom/internal/trace"
)

// Bump when the snapshot payload format changes.
const snapshotSchemaVersion uint16 = 1

// Digest is a SHA-256 of the manifest bytes, keying its snapshot.
type Digest [sha256.Size]byte

// DigestOf hashes manifest bytes.
func DigestOf(data []byte) Digest {
	return sha256.Sum256(data)
}

// Cache stores parsed manifests on disk so repeated loads of the same
// manifest skip TOML decoding. Thread-safe.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type snapshotPayload struct {
	Schema   uint16   `msgpack:"schema"`
	Digest   Digest   `msgpack:"digest"`
	Manifest Manifest `msgpack:"manifest"`
}

// OpenCache initializes the cache at the standard XDG location.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// OpenCacheAt initializes the cache in an explicit directory. Tests use it
// with t.TempDir().
func OpenCacheAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
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

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "manifests", hex.EncodeToString(key[:])+".mp")
}

// Put writes the parsed manifest under its digest, atomically.
func (c *Cache) Put(key Digest, m *Manifest) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&snapshotPayload{
		Schema:   snapshotSchemaVersion,
		Digest:   key,
		Manifest: *m,
	}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the manifest for a digest. A stale schema or mismatched digest
// is a miss, not an error.
func (c *Cache) Get(key Digest) (*Manifest, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload snapshotPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != snapshotSchemaVersion || payload.Digest != key {
		return nil, false, nil
	}
	return &payload.Manifest, true, nil
}

// DropAll invalidates the whole cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// LoadCached builds a module from a manifest file, consulting the cache for
// the parsed form. cache may be nil, which degrades to a plain Load.
func LoadCached(path string, cache *Cache, tracer trace.Tracer) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	key := DigestOf(data)

	m, hit, err := cache.Get(key)
	if err != nil {
		return nil, fmt.Errorf("loader: snapshot read: %w", err)
	}
	if hit {
		trace.Point(tracer, trace.LevelDetail, "snapshot.hit", hex.EncodeToString(key[:8]))
	} else {
		m, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", path, err)
		}
		if err := cache.Put(key, m); err != nil {
			return nil, fmt.Errorf("loader: snapshot write: %w", err)
		}
	}

	mod, err := Build(m, tracer)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	return mod, nil
}
