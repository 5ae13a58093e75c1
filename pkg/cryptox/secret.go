package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Secret sizes in bytes before encoding. An HMAC key should be at least as
// long as the hash output of its algorithm.
const (
	SecretSizeHS256 = 32
	SecretSizeHS384 = 48
	SecretSizeHS512 = 64
)

// SecretSize returns the recommended key length for an HMAC JWT algorithm.
// Unknown algorithms get the HS256 size.
func SecretSize(alg string) int {
	switch alg {
	case "HS384":
		return SecretSizeHS384
	case "HS512":
		return SecretSizeHS512
	default:
		return SecretSizeHS256
	}
}

// GenerateSecret creates a cryptographically secure random secret of the
// specified byte length, base64url-encoded without padding.
func GenerateSecret(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("secret size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random secret: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// WeakSecret reports whether secret is shorter than the recommended key
// length of alg.
func WeakSecret(secret, alg string) bool {
	return len(secret) < SecretSize(alg)
}
