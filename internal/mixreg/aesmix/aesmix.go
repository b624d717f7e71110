// Package aesmix implements the 16-byte-block mixing primitives: plain AES-128-ECB under a
// fixed internal key, and the two one-way compression constructions (Davies-Meyer and
// Matyas-Meyer-Oseas) built on top of it.
package aesmix

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// BlockSize is the block size, in bytes, of every primitive in this package.
const BlockSize = 16

// fixedKey is the constant AES-128 key used by AES128 and MatyasMeyerOseas, the same value
// the reference implementation uses. It is a public constant, not a secret: both
// constructions apply one fixed, publicly known AES permutation to every block, and only
// the per-block input varies.
var fixedKey = []byte("super-secure-key")

// fixedIV is the constant block encrypted under per-block input in DaviesMeyer.
var fixedIV = [BlockSize]byte{}

func blockCipher(key []byte) cipher.Block {
	b, err := aes.NewCipher(key)
	if err != nil {
		panic(fmt.Sprintf("aesmix: invalid key length %d: %v", len(key), err))
	}
	return b
}

// AES128 replaces every 16-byte block of src with its AES-128-ECB encryption under
// fixedKey, writing the result to dst. dst and src may overlap completely (dst == src) but
// not partially.
func AES128(dst, src []byte) error {
	if err := checkBlocks(dst, src); err != nil {
		return err
	}
	b := blockCipher(fixedKey)
	for off := 0; off < len(src); off += BlockSize {
		b.Encrypt(dst[off:off+BlockSize], src[off:off+BlockSize])
	}
	return nil
}

// MatyasMeyerOseas computes, for every 16-byte block `m` of src, `E_fixedKey(m) XOR m`.
func MatyasMeyerOseas(dst, src []byte) error {
	if err := checkBlocks(dst, src); err != nil {
		return err
	}
	b := blockCipher(fixedKey)
	var tmp [BlockSize]byte
	for off := 0; off < len(src); off += BlockSize {
		m := src[off : off+BlockSize]
		b.Encrypt(tmp[:], m)
		for i := range tmp {
			tmp[i] ^= m[i]
		}
		copy(dst[off:off+BlockSize], tmp[:])
	}
	return nil
}

// DaviesMeyer computes, for every 16-byte block `m` of src (used as an AES-128 key), `E_m(fixedIV) XOR fixedIV`.
func DaviesMeyer(dst, src []byte) error {
	if err := checkBlocks(dst, src); err != nil {
		return err
	}
	var tmp [BlockSize]byte
	for off := 0; off < len(src); off += BlockSize {
		b := blockCipher(src[off : off+BlockSize])
		b.Encrypt(tmp[:], fixedIV[:])
		for i := range tmp {
			tmp[i] ^= fixedIV[i]
		}
		copy(dst[off:off+BlockSize], tmp[:])
	}
	return nil
}

func checkBlocks(dst, src []byte) error {
	if len(dst) != len(src) {
		return fmt.Errorf("aesmix: dst and src length mismatch: %d != %d", len(dst), len(src))
	}
	if len(src)%BlockSize != 0 {
		return fmt.Errorf("aesmix: size %d is not a multiple of block size %d", len(src), BlockSize)
	}
	return nil
}
