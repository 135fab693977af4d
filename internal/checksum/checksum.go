// Package checksum computes the digests used as record ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Of returns the digest of v's JSON encoding. Two values with the same
// encoding share a checksum.
func Of(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("checksum: encode: %w", err)
	}
	return Sum(data), nil
}

// Match reports whether an If-Match header value names sum. Quotes and a weak
// prefix are ignored, and "*" matches anything.
func Match(header, sum string) bool {
	if header == "" || header == "*" {
		return true
	}
	if len(header) > 2 && header[:2] == "W/" {
		header = header[2:]
	}
	if len(header) >= 2 && header[0] == '"' && header[len(header)-1] == '"' {
		header = header[1 : len(header)-1]
	}
	return header == sum
}
