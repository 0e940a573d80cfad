// Package cache stores opaque byte values under string keys with a TTL.
//
// ghdepup caches the tag lists it fetches so repeated runs in CI do not
// spend API rate limit on unchanged projects. Three backends exist:
//
//   - [FileCache]: one JSON file per key below a directory (the default)
//   - [RedisCache]: shared cache for runners that share a Redis instance
//   - [NullCache]: stores nothing, used with --cache=none
//
// Keys are built with [Key], which namespaces a hash of the key parts.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte cache with per-entry expiration.
type Cache interface {
	// Get returns the value stored under key. ok is false on a miss or
	// when the entry has expired.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// DefaultDir returns the directory used by the file cache:
// $XDG_CACHE_HOME/ghdepup, falling back to ~/.cache/ghdepup.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "ghdepup"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "ghdepup"), nil
}
