package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// NewID returns a short best-effort unique identifier for a connection.
// Collisions are possible in principle but not checked for; the token
// space is large relative to the expected number of concurrent
// connections.
func NewID() string {
	const size = 3 // 6 hex chars

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}

	// Fallback to timestamp if crypto/rand is unavailable.
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
