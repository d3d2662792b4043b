package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// refreshTokenBytes sets refresh token entropy at 256 bits.
const refreshTokenBytes = 32

// NewRefreshToken returns an opaque refresh token string drawn from a
// cryptographically secure random source. The string carries no structure;
// all of its meaning lives in the stored record it is keyed to.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("couldn't read random bytes: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
