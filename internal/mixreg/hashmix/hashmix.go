// Package hashmix implements the fixed-output-size hash-based mixing primitives: SHA3-256,
// SHA3-512, BLAKE2s-256, BLAKE2b-512, and BLAKE3 (32-byte digest), each applied
// independently per block.
package hashmix

import (
	"fmt"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

const (
	// BlockSize256 is the block size for the 32-byte-digest primitives (SHA3-256,
	// BLAKE2s-256, BLAKE3).
	BlockSize256 = 32

	// BlockSize512 is the block size for the 64-byte-digest primitives (SHA3-512,
	// BLAKE2b-512).
	BlockSize512 = 64
)

// SHA3_256 replaces every 32-byte block of src with its SHA3-256 digest.
func SHA3_256(dst, src []byte) error {
	return digestEach(dst, src, BlockSize256, func(out, in []byte) {
		sum := sha3.Sum256(in)
		copy(out, sum[:])
	})
}

// SHA3_512 replaces every 64-byte block of src with its SHA3-512 digest.
func SHA3_512(dst, src []byte) error {
	return digestEach(dst, src, BlockSize512, func(out, in []byte) {
		sum := sha3.Sum512(in)
		copy(out, sum[:])
	})
}

// BLAKE2s replaces every 32-byte block of src with its unkeyed BLAKE2s-256 digest.
func BLAKE2s(dst, src []byte) error {
	return digestEach(dst, src, BlockSize256, func(out, in []byte) {
		sum := blake2s.Sum256(in)
		copy(out, sum[:])
	})
}

// BLAKE2b replaces every 64-byte block of src with its unkeyed BLAKE2b-512 digest.
func BLAKE2b(dst, src []byte) error {
	return digestEach(dst, src, BlockSize512, func(out, in []byte) {
		sum := blake2b.Sum512(in)
		copy(out, sum[:])
	})
}

// BLAKE3 replaces every 32-byte block of src with its 32-byte BLAKE3 digest.
func BLAKE3(dst, src []byte) error {
	return digestEach(dst, src, BlockSize256, func(out, in []byte) {
		h := blake3.New()
		_, _ = h.Write(in)
		copy(out, h.Sum(nil))
	})
}

func digestEach(dst, src []byte, blockSize int, sum func(out, in []byte)) error {
	if len(dst) != len(src) {
		return fmt.Errorf("hashmix: dst and src length mismatch: %d != %d", len(dst), len(src))
	}
	if len(src)%blockSize != 0 {
		return fmt.Errorf("hashmix: size %d is not a multiple of block size %d", len(src), blockSize)
	}

	var scratch [BlockSize512]byte
	for off := 0; off < len(src); off += blockSize {
		in := scratch[:blockSize]
		copy(in, src[off:off+blockSize])
		sum(dst[off:off+blockSize], in)
	}
	return nil
}
