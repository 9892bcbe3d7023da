package annotation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	Algorithm = "sha256"
	// HashLength is the number of hex characters kept from the digest.
	HashLength = 64
	// UnknownHash marks a comment whose origin could not be hashed.
	UnknownHash = "unknown"
)

// Hash returns the fingerprint of block content.
func Hash(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = norm.NFC.String(content)
	sum := sha256.Sum256([]byte(content))
	out := hex.EncodeToString(sum[:])
	if len(out) > HashLength {
		out = out[:HashLength]
	}
	return out
}
