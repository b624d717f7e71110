// Package xofmix implements the extendable-output-function mixing primitives: SHAKE128,
// SHAKE256, TurboSHAKE128, TurboSHAKE256, KT128, and the three Keccak-p[1600]-duplex stand-ins
// for Xoodyak, Xoofff-WBC, and Kravatte-WBC. Every primitive absorbs one block and squeezes
// a same-size block back out, so the mix remains length-preserving like the rest of the
// registry's primitives.
package xofmix

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/codahale/keymix/hazmat/keccak"
	"github.com/codahale/keymix/hazmat/kt128"
	"github.com/codahale/keymix/hazmat/turboshake"
	"github.com/codahale/keymix/internal/mem"
)

const (
	// BlockSize128 is the block size for the 128-byte-squeeze primitives (SHAKE256,
	// TurboSHAKE256).
	BlockSize128 = 128

	// BlockSize160 is the block size for the 160-byte-squeeze primitives (SHAKE128,
	// TurboSHAKE128, KT128).
	BlockSize160 = 160

	// BlockSize48 is the block size of the Xoodyak/Xoofff-WBC duplex stand-ins.
	BlockSize48 = 48

	// BlockSize192 is the block size of the Kravatte-WBC duplex stand-in.
	BlockSize192 = 192
)

// domain separation bytes for the primitives built on this module's own TurboSHAKE/Keccak
// wrappers. These are application-specific constants, not part of any published standard:
// the registry's role is only to squeeze a deterministic, primitive-specific pseudorandom
// block, and distinct ds bytes are enough to keep the families from colliding. SHAKE128 and
// SHAKE256 need no entry here: golang.org/x/crypto/sha3 applies the FIPS 202 SHAKE padding
// itself, unlike the hand-rolled duplex below, which has to mix its own separation byte into
// the sponge state.
const (
	dsTurboShake  = 0x1F
	dsXoodyak     = 0x41
	dsXoofffWBC   = 0x42
	dsKravatteWBC = 0x43
)

// SHAKE128 replaces every 160-byte block of src with SHAKE128(block, 160).
func SHAKE128(dst, src []byte) error {
	return eachBlock(dst, src, BlockSize160, func(out, in []byte) error {
		h := sha3.NewSHAKE128()
		_, _ = h.Write(in)
		_, _ = h.Read(out)
		return nil
	})
}

// SHAKE256 replaces every 128-byte block of src with SHAKE256(block, 128).
func SHAKE256(dst, src []byte) error {
	return eachBlock(dst, src, BlockSize128, func(out, in []byte) error {
		h := sha3.NewSHAKE256()
		_, _ = h.Write(in)
		_, _ = h.Read(out)
		return nil
	})
}

// TurboShake128 replaces every 160-byte block of src with TurboSHAKE128(block, ds, 160).
func TurboShake128(dst, src []byte) error {
	return eachBlock(dst, src, BlockSize160, func(out, in []byte) error {
		h := turboshake.New(dsTurboShake)
		_, _ = h.Write(in)
		_, _ = h.Read(out)
		return nil
	})
}

// TurboShake256 replaces every 128-byte block of src with TurboSHAKE256(block, ds, 128).
func TurboShake256(dst, src []byte) error {
	return eachBlock(dst, src, BlockSize128, func(out, in []byte) error {
		h := turboshake.NewRate(turboshake.Rate256, dsTurboShake)
		_, _ = h.Write(in)
		_, _ = h.Read(out)
		return nil
	})
}

// KT128 replaces every 160-byte block of src with KT128(block, 160).
func KT128(dst, src []byte) error {
	return eachBlock(dst, src, BlockSize160, func(out, in []byte) error {
		h := kt128.New()
		_, _ = h.Write(in)
		_, _ = h.Read(out)
		return nil
	})
}

// Xoodyak replaces every 48-byte block of src with a Keccak-p[1600] duplex squeeze
// (see the package doc and DESIGN.md for why this stands in for the real Xoodyak permutation).
func Xoodyak(dst, src []byte) error {
	return eachBlock(dst, src, BlockSize48, func(out, in []byte) error {
		duplex(out, in, dsXoodyak)
		return nil
	})
}

// XoofffWBC replaces every 48-byte block of src with a Keccak-p[1600] duplex squeeze.
func XoofffWBC(dst, src []byte) error {
	return eachBlock(dst, src, BlockSize48, func(out, in []byte) error {
		duplex(out, in, dsXoofffWBC)
		return nil
	})
}

// KravatteWBC replaces every 192-byte block of src with a Keccak-p[1600] duplex squeeze.
func KravatteWBC(dst, src []byte) error {
	return eachBlock(dst, src, BlockSize192, func(out, in []byte) error {
		duplex(out, in, dsKravatteWBC)
		return nil
	})
}

// duplex absorbs a single block (strictly shorter than the 200-byte Keccak-p[1600] state)
// under domain separation byte ds and squeezes a same-size block back out.
func duplex(out, in []byte, ds byte) {
	var s [200]byte
	mem.XORInPlace(s[:len(in)], in)
	s[len(in)] ^= ds
	s[len(s)-1] ^= 0x80
	keccak.P1600(&s)
	copy(out, s[:len(out)])
}

func eachBlock(dst, src []byte, blockSize int, f func(out, in []byte) error) error {
	if len(dst) != len(src) {
		return fmt.Errorf("xofmix: dst and src length mismatch: %d != %d", len(dst), len(src))
	}
	if len(src)%blockSize != 0 {
		return fmt.Errorf("xofmix: size %d is not a multiple of block size %d", len(src), blockSize)
	}

	scratch := make([]byte, blockSize)
	for off := 0; off < len(src); off += blockSize {
		copy(scratch, src[off:off+blockSize])
		if err := f(dst[off:off+blockSize], scratch); err != nil {
			return err
		}
	}
	return nil
}
