// Package turboshake implements TurboSHAKE128 and TurboSHAKE256 as specified in RFC 9861.
//
// TurboSHAKE is an eXtendable-Output Function (XOF) family based on the Keccak-p[1600,12]
// permutation. TurboSHAKE128 uses a rate of 168 bytes (a 256-bit capacity); TurboSHAKE256
// uses a rate of 136 bytes (a 512-bit capacity).
package turboshake

import (
	"github.com/codahale/keymix/hazmat/keccak"
	"github.com/codahale/keymix/internal/mem"
)

const (
	// Rate is the TurboSHAKE128 rate in bytes (200 - 32), kept for callers that only ever
	// use the 128-bit-security variant.
	Rate = Rate128

	// Rate128 is the TurboSHAKE128 rate in bytes (200 - 32).
	Rate128 = 168

	// Rate256 is the TurboSHAKE256 rate in bytes (200 - 64).
	Rate256 = 136
)

// Hasher is an incremental TurboSHAKE instance that implements io.ReadWriter.
// Writes absorb data into the sponge and reads squeeze output from it.
// Once Read is called, no further writes are permitted.
type Hasher struct {
	s         [200]byte
	rate      int
	pos       int
	ds        byte
	squeezing bool
}

// New returns a new Hasher with rate 168 (TurboSHAKE128) and the given domain separation
// byte.
func New(ds byte) Hasher {
	return NewRate(Rate128, ds)
}

// NewRate returns a new Hasher with the given rate (Rate128 or Rate256) and domain
// separation byte.
func NewRate(rate int, ds byte) Hasher {
	return Hasher{rate: rate, ds: ds}
}

// Reset zeros the hasher and reinitializes it with the given domain separation byte,
// keeping its current rate.
func (h *Hasher) Reset(ds byte) {
	clear(h.s[:])
	h.pos = 0
	h.ds = ds
	h.squeezing = false
}

// Write absorbs p into the sponge state. It must not be called after Read.
func (h *Hasher) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		w := min(h.rate-h.pos, len(p))
		mem.XORInPlace(h.s[h.pos:h.pos+w], p[:w])
		h.pos += w
		p = p[w:]
		if h.pos == h.rate {
			keccak.P1600(&h.s)
			h.pos = 0
		}
	}
	return n, nil
}

// Read squeezes output from the sponge state into p. On the first call,
// it finalizes absorption by applying padding and permuting. Subsequent
// calls continue squeezing.
func (h *Hasher) Read(p []byte) (int, error) {
	if !h.squeezing {
		h.s[h.pos] ^= h.ds
		h.s[h.rate-1] ^= 0x80
		keccak.P1600(&h.s)
		h.pos = 0
		h.squeezing = true
	}
	n := len(p)
	for len(p) > 0 {
		if h.pos == h.rate {
			keccak.P1600(&h.s)
			h.pos = 0
		}
		r := copy(p, h.s[h.pos:h.rate])
		h.pos += r
		p = p[r:]
	}
	return n, nil
}

// Sum computes TurboSHAKE128(msg, ds, outLen) and returns the result.
// The domain separation byte ds must be in the range [0x01, 0x7F].
func Sum(msg []byte, ds byte, outLen int) []byte {
	h := New(ds)
	return sum(&h, msg, outLen)
}

// Sum256 computes TurboSHAKE256(msg, ds, outLen) and returns the result.
func Sum256(msg []byte, ds byte, outLen int) []byte {
	h := NewRate(Rate256, ds)
	return sum(&h, msg, outLen)
}

func sum(h *Hasher, msg []byte, outLen int) []byte {
	_, _ = h.Write(msg)
	out := make([]byte, outLen)
	_, _ = h.Read(out)
	return out
}

// Chain clones a into b, updates b with the given domain separation byte, and finalizes both in parallel. After Chain
// returns, both a and b are in squeezing mode and ready for Read. a and b must share the same rate.
func Chain(a, b *Hasher, ds byte) {
	if a.squeezing {
		panic("turboshake: parallel finalization with finalized state")
	}

	*b = *a
	a.s[a.pos] ^= a.ds
	a.s[a.rate-1] ^= 0x80
	b.s[b.pos] ^= ds
	b.s[b.rate-1] ^= 0x80
	keccak.P1600x2(&a.s, &b.s)
	a.pos, b.pos = 0, 0
	a.squeezing, b.squeezing = true, true
}
