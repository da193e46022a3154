package notifications

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// PhoneDigest returns a short stable digest of phone for logs.
func PhoneDigest(phone string) string {
	if phone == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(phone))
	return hex.EncodeToString(sum[:8])
}
