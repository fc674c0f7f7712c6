package handler

import (
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/bazaarline/storefront/internal/domain/auth"
)

// APIKeyHeader carries the admin API key.
const APIKeyHeader = "X-API-Key"

// Security authenticates admin requests via HMAC-SHA256 hashed API keys.
type Security struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurity creates a Security middleware with the given API key repository
// and HMAC pepper.
func NewSecurity(apikeys auth.Repository, pepper []byte) *Security {
	return &Security{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// RequireAPIKey wraps next, rejecting requests whose API key is missing or
// does not hash to a stored key. The stored hash is re-compared in constant
// time to guard against timing side-channels even after a successful lookup.
func (s *Security) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw := r.Header.Get(APIKeyHeader)
		if raw == "" {
			respondError(ctx, w, http.StatusUnauthorized, "missing api key")
			return
		}

		hexHash := auth.HashKey(raw, s.pepper)

		info, err := s.apikeys.FindByHash(ctx, hexHash)
		if err != nil {
			respondError(ctx, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		computed, err := hex.DecodeString(hexHash)
		if err != nil {
			respondError(ctx, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		stored, err := hex.DecodeString(info.KeyHash)
		if err != nil {
			respondError(ctx, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if subtle.ConstantTimeCompare(computed, stored) != 1 {
			respondError(ctx, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}
