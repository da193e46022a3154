package orders

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const tokenBytes = 18

// NewToken returns a random URL safe order token.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
