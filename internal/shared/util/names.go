package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// StoredFileName builds a collision-resistant name of the form
// <unix millis>-<random hex><ext>, keeping only the original extension.
func StoredFileName(originalName string, now time.Time) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), RandomHex(8), Ext(originalName))
}

// RandomHex returns 2*n hex characters from crypto/rand, falling back to the clock.
func RandomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
