package webutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateRandomToken returns n bytes from crypto/rand, hex encoded.
func GenerateRandomToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
