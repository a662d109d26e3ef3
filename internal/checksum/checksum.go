// Package checksum computes content digests used as ETags and file checksums.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Fields digests an ordered list of fields. Each field is length-prefixed so
// ("ab", "c") and ("a", "bc") produce different sums.
func Fields(fields ...string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return Sum([]byte(b.String()))
}
