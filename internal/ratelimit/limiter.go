// Package ratelimit bounds submission volume per hashed network identity
// with a fixed 60-second window counter.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Default limits for lead submissions.
const (
	DefaultWindow = time.Minute
	DefaultMax    = 5
)

// Limiter is the pipeline's rate limiting collaborator. Allow records the
// attempt and reports whether it is within the limit. Rejected attempts
// still count toward the window. An empty identity is never limited.
type Limiter interface {
	Allow(ctx context.Context, identity string) (bool, error)
}

// HashIdentity returns the SHA-256 hex digest of a network address, or ""
// when the address is empty. The raw address is never stored.
func HashIdentity(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}
