package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Cache defines the interface for the fallback answer cache.
// Entries never expire: the cache is pure memoization.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Clear() error
}

// Counter is implemented by caches that can report their size
type Counter interface {
	Len() (int, error)
}

// Closer is implemented by caches holding external resources
type Closer interface {
	Close() error
}

// KeyPrefix versions the key layout
const KeyPrefix = "inmueble:v1:"

// FallbackKey generates the content-addressed key of an inference answer
// from the model identifier, the text and the requested fields. Field
// order does not matter.
func FallbackKey(model, text string, fields []string) string {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)

	textHash := sha256.Sum256([]byte(text))

	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(hex.EncodeToString(textHash[:])))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sorted, ",")))
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Len returns the number of entries of c, or -1 when c cannot count
func Len(c Cache) int {
	counter, ok := c.(Counter)
	if !ok {
		return -1
	}
	n, err := counter.Len()
	if err != nil {
		return -1
	}
	return n
}

// Close releases c's resources if it holds any
func Close(c Cache) error {
	if closer, ok := c.(Closer); ok {
		return closer.Close()
	}
	return nil
}
