package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// RefreshTokenSize is the number of random bytes behind each refresh token
// (512 bits, 88 chars once base64 encoded).
const RefreshTokenSize = 64

// GenerateRefreshToken returns RefreshTokenSize bytes from the system CSPRNG
// encoded with standard, padded base64. The token carries no data; it is
// only a lookup key.
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, RefreshTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// Persistent stores key records by fingerprint so a leaked table or keyspace
// does not leak usable tokens.
//
// The fingerprint is returned as a base64url-encoded string (43 chars).
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
