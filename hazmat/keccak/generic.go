package keccak

import "encoding/binary"

// rc holds the 24 round constants for the full Keccak-f[1600] permutation. A reduced-round
// permutation (as used by Keccak-p[1600,12] in TurboSHAKE and KT128) uses the last n of
// these, so that round numbering still lines up with the full-round reference vectors.
var rc = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808a, 0x8000000080008000,
	0x000000000000808b, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008a, 0x0000000000000088, 0x0000000080008009, 0x000000008000000a,
	0x000000008000808b, 0x800000000000008b, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800a, 0x800000008000000a,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

// rotc holds the rotation offset for each of the 25 lanes, indexed as x+5y.
var rotc = [25]uint{
	0, 1, 62, 28, 27,
	36, 44, 6, 55, 20,
	3, 10, 43, 25, 39,
	41, 45, 15, 21, 8,
	18, 2, 61, 56, 14,
}

// f1600Generic applies the last n rounds of the Keccak-f[1600] permutation to a, a 200-byte
// buffer holding 25 little-endian 64-bit lanes.
func f1600Generic(a *[200]byte, n int) {
	var lanes [25]uint64
	for i := range lanes {
		lanes[i] = binary.LittleEndian.Uint64(a[i*8:])
	}

	var bc [5]uint64
	for round := 24 - n; round < 24; round++ {
		// θ
		for x := 0; x < 5; x++ {
			bc[x] = lanes[x] ^ lanes[x+5] ^ lanes[x+10] ^ lanes[x+15] ^ lanes[x+20]
		}
		for x := 0; x < 5; x++ {
			t := bc[(x+4)%5] ^ rotl64(bc[(x+1)%5], 1)
			for y := 0; y < 25; y += 5 {
				lanes[x+y] ^= t
			}
		}

		// ρ and π
		var plane [25]uint64
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				plane[y+((2*x+3*y)%5)*5] = rotl64(lanes[x+y*5], rotc[x+y*5])
			}
		}

		// χ
		for y := 0; y < 25; y += 5 {
			for x := 0; x < 5; x++ {
				bc[x] = plane[y+x]
			}
			for x := 0; x < 5; x++ {
				lanes[y+x] = bc[x] ^ (^bc[(x+1)%5] & bc[(x+2)%5])
			}
		}

		// ι
		lanes[0] ^= rc[round]
	}

	for i := range lanes {
		binary.LittleEndian.PutUint64(a[i*8:], lanes[i])
	}
}

func rotl64(x uint64, n uint) uint64 {
	return x<<n | x>>(64-n)
}
