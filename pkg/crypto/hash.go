// Package crypto provides the client's cryptographic primitives.
package crypto

import (
	"github.com/cellforge/cellforge/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes the BLAKE3-256 hash of data.
func Hash(data []byte) types.Hash {
	return types.Hash(blake3.Sum256(data))
}

// HashConcat hashes the concatenation of the given byte slices without
// allocating an intermediate buffer.
func HashConcat(parts ...[]byte) types.Hash {
	h := blake3.New()
	for _, p := range parts {
		_, _ = h.Write(p) // blake3 Write never fails
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// ScriptHash computes the canonical hash of a script
// (BLAKE3 over template byte || args).
func ScriptHash(s types.Script) types.Hash {
	return Hash(s.SigningBytes())
}
