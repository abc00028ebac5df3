// Package cache memoises perceptual hashes by the content of the image file,
// so identical bytes are never decoded and hashed twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	phash "github.com/vmchale/phash-fut"
)

// Cache stores hashes under a content key.
type Cache interface {
	// Get returns the hash stored for key. A miss is (0, false, nil).
	Get(ctx context.Context, key string) (phash.Hash, bool, error)

	// Set stores h under key.
	Set(ctx context.Context, key string, h phash.Hash) error
}

// ContentKey returns the sha256 hex digest of raw file bytes.
func ContentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
