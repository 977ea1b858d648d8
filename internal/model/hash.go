package model

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ContentHash computes the content_hash recorded on an IndexedFile, used
// by the external indexer to detect unchanged files on reindex (spec §3,
// §6). blake2b-256 rather than a hand-rolled hash, since the store's
// dependency stack already reaches for golang.org/x/crypto for this kind
// of fingerprinting concern.
func ContentHash(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}
