// Package auth holds API key identity data and the hashing scheme shared by
// the server and the seeding tools.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned for unknown or mismatched API keys.
var ErrUnauthorized = errors.New("unauthorized")

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

// HashKey computes the hex-encoded HMAC-SHA256 of the raw API key under the
// given pepper. Both the server and cmd/seed-db use this so stored hashes
// always match what the security handler computes.
func HashKey(raw string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
