// Package cache stores language-model responses so unchanged notes are not
// sent to the model twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ResponseKey derives the cache key for one extraction request. Any change to
// provider, model, prompt, or note content yields a different key.
func ResponseKey(provider, model, prompt, content string) string {
	h := sha256.New()
	for _, part := range []string{provider, model, prompt, content} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "notetasks:v1:" + hex.EncodeToString(h.Sum(nil))
}
