package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheStoreLookup(t *testing.T) {
	t.Parallel()
	c, err := New(filepath.Join(t.TempDir(), "media"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, ok := c.Lookup("/u/1/video.mp4"); ok {
		t.Fatal("lookup hit before store")
	}

	local, err := c.Store("/u/1/video.mp4", []byte("fake-bytes"))
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if !strings.HasSuffix(local, ".mp4") {
		t.Fatalf("cached file %q should keep the extension", local)
	}

	got, ok := c.Lookup("/u/1/video.mp4")
	if !ok || got != local {
		t.Fatalf("Lookup = %q, %v; want %q", got, ok, local)
	}
	data, err := os.ReadFile(got)
	if err != nil || string(data) != "fake-bytes" {
		t.Fatalf("cached content = %q, %v", data, err)
	}
}

func TestCacheLocalPathStaysInsideRoot(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "media")
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	local := c.localPath("../../etc/passwd")
	if filepath.Dir(local) != dir {
		t.Fatalf("local path %q escaped cache root %q", local, dir)
	}
}

func TestCacheRequiresDirectory(t *testing.T) {
	t.Parallel()
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	t.Parallel()
	var c *Cache
	if _, ok := c.Lookup("/x"); ok {
		t.Fatal("nil cache lookup should miss")
	}
	if _, err := c.Store("/x", nil); err == nil {
		t.Fatal("nil cache store should error")
	}
}
