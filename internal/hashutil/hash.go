// Package hashutil provides the SHA-256 hashing used to content-address
// gate artifacts.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashStrings hashes the ordered concatenation of fields, each on its own
// line, so permuting a list's order changes the hash (spec.md §3's gate
// artifact invariant: positional concatenation is part of the contract).
func HashStrings(fields ...string) string {
	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
