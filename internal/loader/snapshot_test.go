package loader

import (
	"os"
	"path/filepath"
	"testing"

	"fathom/internal/types"
)

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCacheAt: %v", err)
	}

	data := []byte(optionManifest)
	key := DigestOf(data)
	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, hit, err := cache.Get(key); err != nil || hit {
		t.Fatalf("empty cache Get = hit %v, err %v", hit, err)
	}
	if err := cache.Put(key, m); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, hit, err := cache.Get(key)
	if err != nil || !hit {
		t.Fatalf("Get after Put = hit %v, err %v", hit, err)
	}
	if got.PointerSize != m.PointerSize || len(got.Types) != len(m.Types) || len(got.Decls) != len(m.Decls) {
		t.Fatalf("cached manifest differs: %+v", got)
	}

	// A cached manifest must still build an equivalent module.
	mod, err := Build(got, nil)
	if err != nil {
		t.Fatalf("Build(cached): %v", err)
	}
	opt := mod.ByID["opt"]
	if mod.Registry.KindOf(opt) != types.KindEnum {
		t.Fatalf("cached build lost the enum")
	}

	// A different digest misses.
	other := DigestOf([]byte("something else"))
	if _, hit, err := cache.Get(other); err != nil || hit {
		t.Fatalf("foreign digest Get = hit %v, err %v", hit, err)
	}
}

func TestCacheDropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cache, err := OpenCacheAt(dir)
	if err != nil {
		t.Fatalf("OpenCacheAt: %v", err)
	}
	data := []byte(optionManifest)
	key := DigestOf(data)
	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := cache.Put(key, m); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("cache dir must be gone, stat err = %v", err)
	}
}

func TestLoadCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "option.toml")
	if err := os.WriteFile(path, []byte(optionManifest), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cache, err := OpenCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("OpenCacheAt: %v", err)
	}

	// Cold load populates the cache.
	mod, err := LoadCached(path, cache, nil)
	if err != nil {
		t.Fatalf("LoadCached(cold): %v", err)
	}
	if mod.Registry.Len() == 0 {
		t.Fatalf("cold load built nothing")
	}
	if _, hit, err := cache.Get(DigestOf([]byte(optionManifest))); err != nil || !hit {
		t.Fatalf("cold load did not populate the cache: hit %v, err %v", hit, err)
	}

	// Warm load serves from the snapshot.
	warm, err := LoadCached(path, cache, nil)
	if err != nil {
		t.Fatalf("LoadCached(warm): %v", err)
	}
	if warm.Registry.Len() != mod.Registry.Len() {
		t.Fatalf("warm load differs: %d vs %d types", warm.Registry.Len(), mod.Registry.Len())
	}

	// A nil cache degrades to a plain load.
	plain, err := LoadCached(path, nil, nil)
	if err != nil {
		t.Fatalf("LoadCached(nil cache): %v", err)
	}
	if plain.Registry.Len() != mod.Registry.Len() {
		t.Fatalf("nil-cache load differs")
	}
}
