package publish

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
)

// CodeID computes the content id of a blob of settlement logic: a
// CIDv0-style base58 multihash (sha2-256) over the raw bytes. It is the
// value the code-identity policy pins escrow bundles to, and matches
// what the pinning service reports for the same content.
func CodeID(code []byte) string {
	digest := sha256.Sum256(code)

	// multihash prefix: sha2-256 (0x12), 32-byte digest (0x20)
	mh := make([]byte, 0, 2+len(digest))
	mh = append(mh, 0x12, 0x20)
	mh = append(mh, digest[:]...)

	return base58.Encode(mh)
}
