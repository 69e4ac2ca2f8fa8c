package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// testBackend exercises the contract every backend shares.
func testBackend(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	value := []byte{0, 1, 2, 0xff}
	if err := c.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v; want hit", hit, err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get(k) = %v, want %v", got, value)
	}

	if err := c.Set(ctx, "k", []byte("new"), 0); err != nil {
		t.Fatalf("Set overwrite error: %v", err)
	}
	if got, _, _ := c.Get(ctx, "k"); string(got) != "new" {
		t.Errorf("Get after overwrite = %q, want %q", got, "new")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	testBackend(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, err := c.Get(ctx, "short"); err != nil || hit {
		t.Errorf("expired entry: hit %v, err %v; want miss", hit, err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{truncated"), 0644); err != nil {
		t.Fatal(err)
	}

	_, hit, err := c.Get(ctx, "k")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get error = %v, want ErrCorrupt", err)
	}
	if hit {
		t.Error("corrupt entry should not be a hit")
	}
	if _, statErr := os.Stat(c.path("k")); statErr != nil {
		t.Error("corrupt entry should be left in place")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

func TestRedisCache(t *testing.T) {
	s := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: s.Addr()})
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()
	testBackend(t, c)
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	c, err := NewRedisCache(ctx, RedisConfig{Addr: s.Addr()})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	s.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should expire with its TTL")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("NewRedisCache should fail when the server is down")
	}
}

func TestDigest(t *testing.T) {
	// BLAKE2s-256 of the empty string.
	const empty = "69217a3079908094e11121d042354a7c1f55b6482ca1a51e1b250dfd1ed0eef9"
	if got := digest(nil); got != empty {
		t.Errorf("digest(nil) = %s, want %s", got, empty)
	}
	if digest([]byte("graph")) == digest([]byte("graph ")) {
		t.Error("digest collided on different inputs")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := GraphKeyOpts{Nodes: 1024, BaseDegree: 5, ExpansionDegree: 8, Seed: [7]uint32{1, 2, 3, 4, 5, 6, 7}}

	key := k.GraphKey(base)
	if !strings.HasPrefix(key, KeyTypeGraph+":") {
		t.Errorf("GraphKey = %q, want prefix %q", key, KeyTypeGraph+":")
	}
	if key != k.GraphKey(base) {
		t.Error("GraphKey should be deterministic")
	}

	variants := []GraphKeyOpts{base, base, base, base}
	variants[0].Nodes++
	variants[1].BaseDegree++
	variants[2].ExpansionDegree++
	variants[3].Seed[0]++
	for i, v := range variants {
		if k.GraphKey(v) == key {
			t.Errorf("variant %d should produce a different key", i)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := GraphKeyOpts{Nodes: 8, BaseDegree: 2}
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:")

	want := "tenant:" + NewDefaultKeyer().GraphKey(opts)
	if got := scoped.GraphKey(opts); got != want {
		t.Errorf("ScopedKeyer GraphKey = %q, want %q", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.GraphKey(GraphKeyOpts{})
	if !strings.HasPrefix(key, "prefix:"+KeyTypeGraph+":") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
