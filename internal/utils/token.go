package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateResetToken returns n random bytes encoded as unpadded base64url.
func GenerateResetToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
