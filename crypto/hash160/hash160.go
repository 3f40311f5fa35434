// Package hash160 computes script hashes: RIPEMD160 over the
// SHA-256 of the script bytes, as in Bitcoin's Hash160.
package hash160

import (
	"github.com/btcsuite/fastsha256"
	"golang.org/x/crypto/ripemd160"
)

// Size is the length of a script hash in bytes.
const Size = ripemd160.Size

// Sum returns the Hash160 of data.
func Sum(data []byte) [Size]byte {
	inner := fastsha256.Sum256(data)
	h := ripemd160.New()
	h.Write(inner[:])
	var sum [Size]byte
	h.Sum(sum[:0])
	return sum
}
