package cache

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func TestFallbackKey_FieldOrderIndependent(t *testing.T) {
	a := FallbackKey("gpt-4o-mini", "casa en venta", []string{"bedrooms", "bathrooms"})
	b := FallbackKey("gpt-4o-mini", "casa en venta", []string{"bathrooms", "bedrooms"})
	if a != b {
		t.Errorf("Expected same key for reordered fields, got %s and %s", a, b)
	}
}

func TestFallbackKey_Distinguishes(t *testing.T) {
	base := FallbackKey("gpt-4o-mini", "casa en venta", []string{"bedrooms"})

	variants := map[string]string{
		"model":  FallbackKey("gpt-4o", "casa en venta", []string{"bedrooms"}),
		"text":   FallbackKey("gpt-4o-mini", "casa en renta", []string{"bedrooms"}),
		"fields": FallbackKey("gpt-4o-mini", "casa en venta", []string{"bedrooms", "levels"}),
	}
	for name, key := range variants {
		if key == base {
			t.Errorf("Expected %s change to produce a different key", name)
		}
	}

	if len(base) != len(KeyPrefix)+64 {
		t.Errorf("Expected prefixed sha256 key, got %q", base)
	}
}

func TestFallbackKey_DoesNotMutateFields(t *testing.T) {
	fields := []string{"levels", "bedrooms"}
	FallbackKey("m", "t", fields)
	if fields[0] != "levels" {
		t.Errorf("Expected caller slice untouched, got %v", fields)
	}
}

// exerciseCache runs the shared contract against any backend
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set("k1", []byte(`{"bedrooms":3}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get("k1")
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if string(got) != `{"bedrooms":3}` {
		t.Errorf("Expected stored value, got %s", got)
	}

	// Empty answers are cached too
	if err := c.Set("k2", []byte(`{}`)); err != nil {
		t.Fatalf("Set empty failed: %v", err)
	}
	if got, ok := c.Get("k2"); !ok || string(got) != `{}` {
		t.Errorf("Expected empty object hit, got %s (hit=%v)", got, ok)
	}

	// Last write wins
	if err := c.Set("k1", []byte(`{"bedrooms":4}`)); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	if got, _ := c.Get("k1"); string(got) != `{"bedrooms":4}` {
		t.Errorf("Expected overwritten value, got %s", got)
	}

	if n := Len(c); n != 2 {
		t.Errorf("Expected 2 entries, got %d", n)
	}

	if err := c.Delete("k1"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, ok := c.Get("k1"); ok {
		t.Error("Expected miss after Delete")
	}

	if err := c.Clear(); err != nil {
		t.Errorf("Clear failed: %v", err)
	}
	if _, ok := c.Get("k2"); ok {
		t.Error("Expected miss after Clear")
	}
	if n := Len(c); n != 0 {
		t.Errorf("Expected 0 entries after Clear, got %d", n)
	}
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache())
}

func TestDiskCache(t *testing.T) {
	exerciseCache(t, NewDiskCache(filepath.Join(t.TempDir(), "cache")))
}

func TestDiskCache_RejectsNonJSON(t *testing.T) {
	c := NewDiskCache(t.TempDir())
	if err := c.Set("k", []byte("not json")); err == nil {
		t.Error("Expected error for non-JSON value")
	}
}

func TestDiskCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	if err := NewDiskCache(dir).Set("k", []byte(`{"levels":2}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := NewDiskCache(dir).Get("k")
	if !ok || string(got) != `{"levels":2}` {
		t.Errorf("Expected value from a fresh instance, got %s (hit=%v)", got, ok)
	}
}

func TestDiskCache_ConcurrentWritesSameKey(t *testing.T) {
	c := NewDiskCache(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := c.Set("same", []byte(fmt.Sprintf(`{"n":%d}`, i))); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if _, ok := c.Get("same"); !ok {
		t.Error("Expected a complete entry after concurrent writes")
	}
	if n := Len(c); n != 1 {
		t.Errorf("Expected a single entry, got %d", n)
	}
}

func TestSQLiteCache(t *testing.T) {
	c, err := OpenSQLiteCache(filepath.Join(t.TempDir(), "inmueble.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	exerciseCache(t, c)
}

func TestLayeredCache(t *testing.T) {
	exerciseCache(t, NewLayeredCache(NewDiskCache(t.TempDir())))
}

func TestLayeredCache_PromotesFromDurable(t *testing.T) {
	disk := NewDiskCache(t.TempDir())
	if err := disk.Set("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	layered := NewLayeredCache(disk)
	if _, ok := layered.Get("k"); !ok {
		t.Fatal("Expected hit from durable layer")
	}

	if _, ok := layered.memory.Get("k"); !ok {
		t.Error("Expected value promoted to memory")
	}
}

func TestLen_Uncountable(t *testing.T) {
	if n := Len(uncountable{}); n != -1 {
		t.Errorf("Expected -1 for a cache without Len, got %d", n)
	}
}

type uncountable struct{}

func (uncountable) Get(string) ([]byte, bool) { return nil, false }
func (uncountable) Set(string, []byte) error  { return nil }
func (uncountable) Delete(string) error       { return nil }
func (uncountable) Clear() error              { return nil }
