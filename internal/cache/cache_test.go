package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_PutGet(t *testing.T) {
	c, err := New(true, t.TempDir(), 3600)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}
	if err := c.Put("k", "hello", 42); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	entry, ok := c.Get("k")
	if !ok {
		t.Fatal("Get should hit after Put")
	}
	if entry.Response != "hello" || entry.Tokens != 42 {
		t.Errorf("entry = %+v", entry)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 60)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	old := Entry{Key: HashKey("k"), Response: "stale", CreatedAt: time.Now().Add(-2 * time.Minute), TTL: 60}
	data, _ := json.Marshal(old)
	if err := os.WriteFile(c.entryPath("k"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Expired != 1 {
		t.Errorf("Expired = %d, want 1", stats.Expired)
	}

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.entryPath("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed on read")
	}
}

func TestCache_Corrupt(t *testing.T) {
	c, err := New(true, t.TempDir(), 60)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.entryPath("k"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("corrupt entry should miss")
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Enabled() {
		t.Error("Enabled() should be false")
	}
	if err := c.Put("k", "v", 1); err != nil {
		t.Errorf("Put on disabled cache should not error: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Get on disabled cache should always miss")
	}
	if n, err := c.Clear(); err != nil || n != 0 {
		t.Errorf("Clear on disabled cache = %d, %v", n, err)
	}
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := c.Put(string(rune('a'+i)), "data", 0); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 5 {
		t.Errorf("Clear removed %d, want 5", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("Clear should only remove cache entries")
	}
}

func TestCache_GetStats(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0", stats.Entries)
	}

	c.Put("key1", "value1", 0)
	c.Put("key2", "value2", 0)

	stats, err = c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.TotalBytes <= 0 {
		t.Error("TotalBytes should be > 0")
	}
	if stats.Dir != dir {
		t.Errorf("Dir = %q, want %q", stats.Dir, dir)
	}
}

func TestDefaultCacheDir_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := defaultCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/xdg-cache/promptmd" {
		t.Errorf("defaultCacheDir = %q", dir)
	}
}

func TestHashKey(t *testing.T) {
	h1 := HashKey("test")
	h2 := HashKey("test")
	h3 := HashKey("other")

	if h1 != h2 {
		t.Error("Same input should produce same hash")
	}
	if h1 == h3 {
		t.Error("Different input should produce different hash")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestBuildCacheKey(t *testing.T) {
	req := []byte(`{"userPrompt":"hi"}`)
	k1 := BuildCacheKey("anthropic", "claude", req)
	k2 := BuildCacheKey("anthropic", "claude", req)
	k3 := BuildCacheKey("openai", "gpt-4o", req)
	k4 := BuildCacheKey("anthropic", "claude", []byte(`{"userPrompt":"hi!"}`))

	if k1 != k2 {
		t.Error("Same inputs should produce same cache key")
	}
	if k1 == k3 || k1 == k4 {
		t.Error("Different inputs should produce different cache keys")
	}
}
