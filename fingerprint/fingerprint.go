// Package fingerprint derives stable identity keys for source files and
// content-hash keys for the embedding cache.
package fingerprint

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// fingerprintLen is the number of hex characters kept from the digest.
const fingerprintLen = 12

// File returns a short fingerprint for the file at path, derived from
// (path, mtime, size). The fingerprint changes when any of the three
// changes and is stable otherwise. Content edits that preserve both mtime
// and size are NOT detected; this is a documented trade-off that keeps
// re-ingestion cheap, not a bug to fix by content hashing.
//
// When the file cannot be stat'ed the fingerprint falls back to hashing the
// path alone so ingestion can still proceed.
func File(path string) string {
	basis := path
	if st, err := os.Stat(path); err == nil {
		basis = fmt.Sprintf("%s:%d:%d", path, st.ModTime().Unix(), st.Size())
	}
	return sha1Hex(basis)[:fingerprintLen]
}

// ContentHash returns the sha256 hex digest of text. It keys the embedding
// cache, where collision resistance across large corpora matters.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first n hex characters of the sha1 digest of s.
// Chunk IDs use it to keep identifiers compact but deterministic.
func ShortHash(s string, n int) string {
	h := sha1Hex(s)
	if n > 0 && n < len(h) {
		return h[:n]
	}
	return h
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
