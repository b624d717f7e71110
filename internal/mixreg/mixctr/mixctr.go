// Package mixctr implements the MIXCTR primitive: a 48-byte macro-block is read as a
// 32-byte AES-256 key followed by a 16-byte counter base, and the macro-block is replaced
// in place by the first 48 bytes of the corresponding AES-256-CTR keystream.
//
// The three catalog tags aes-ni-mixctr, openssl-mixctr, and wolfcrypt-mixctr all resolve to
// Mix: they name distinct backend libraries in the system this module's specification was
// distilled from, but mathematically compute the same function, so there is exactly one
// Go implementation for all three.
package mixctr

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// BlockSize is the MIXCTR macro-block size, in bytes.
const BlockSize = 48

const (
	keySize   = 32
	baseSize  = 16
	outPerMac = BlockSize
)

// Mix replaces each 48-byte macro-block of src with its MIXCTR keystream, writing the
// result to dst. dst and src may overlap completely (dst == src) but not partially.
func Mix(dst, src []byte) error {
	if len(dst) != len(src) {
		return fmt.Errorf("mixctr: dst and src length mismatch: %d != %d", len(dst), len(src))
	}
	if len(src)%BlockSize != 0 {
		return fmt.Errorf("mixctr: size %d is not a multiple of block size %d", len(src), BlockSize)
	}

	var zero [outPerMac]byte
	for off := 0; off < len(src); off += BlockSize {
		macro := src[off : off+BlockSize]
		key := macro[:keySize]
		base := macro[keySize : keySize+baseSize]

		block, err := aes.NewCipher(key)
		if err != nil {
			return fmt.Errorf("mixctr: %w", err)
		}
		stream := cipher.NewCTR(block, base)
		stream.XORKeyStream(dst[off:off+BlockSize], zero[:])
	}
	return nil
}
