// Package mixreg implements the mix registry: a closed, ordered catalog mapping a symbolic
// primitive tag to its (mix function, block size) pair. The registry is process-wide
// immutable state, built once on first use.
package mixreg

import (
	"fmt"
	"sync"

	"github.com/codahale/keymix/internal/mixreg/aesmix"
	"github.com/codahale/keymix/internal/mixreg/hashmix"
	"github.com/codahale/keymix/internal/mixreg/mixctr"
	"github.com/codahale/keymix/internal/mixreg/xofmix"
)

// Tag identifies a mixing primitive by its symbolic catalog name.
type Tag string

// The full primitive catalog, in the order the reference CLI's get_mix_type recognizes them.
const (
	OpenSSLAES128              Tag = "openssl-aes-128"
	WolfCryptAES128            Tag = "wolfcrypt-aes-128"
	OpenSSLDaviesMeyer         Tag = "openssl-davies-meyer"
	WolfCryptDaviesMeyer       Tag = "wolfcrypt-davies-meyer"
	OpenSSLMatyasMeyerOseas    Tag = "openssl-matyas-meyer-oseas"
	WolfCryptMatyasMeyerOseas  Tag = "wolfcrypt-matyas-meyer-oseas"
	OpenSSLSHA3_256            Tag = "openssl-sha3-256"
	WolfCryptSHA3_256          Tag = "wolfcrypt-sha3-256"
	OpenSSLBLAKE2s             Tag = "openssl-blake2s"
	WolfCryptBLAKE2s           Tag = "wolfcrypt-blake2s"
	BLAKE3                     Tag = "blake3-blake3"
	AESNIMixCtr                Tag = "aes-ni-mixctr"
	OpenSSLMixCtr              Tag = "openssl-mixctr"
	WolfCryptMixCtr            Tag = "wolfcrypt-mixctr"
	XKCPXoodyak                Tag = "xkcp-xoodyak"
	XKCPXoofffWBC              Tag = "xkcp-xoofff-wbc"
	OpenSSLSHA3_512            Tag = "openssl-sha3-512"
	WolfCryptSHA3_512          Tag = "wolfcrypt-sha3-512"
	OpenSSLBLAKE2b             Tag = "openssl-blake2b"
	WolfCryptBLAKE2b           Tag = "wolfcrypt-blake2b"
	OpenSSLSHAKE256            Tag = "openssl-shake256"
	WolfCryptSHAKE256          Tag = "wolfcrypt-shake256"
	XKCPTurboSHAKE256          Tag = "xkcp-turboshake256"
	OpenSSLSHAKE128            Tag = "openssl-shake128"
	WolfCryptSHAKE128          Tag = "wolfcrypt-shake128"
	XKCPTurboSHAKE128          Tag = "xkcp-turboshake128"
	XKCPKangarooTwelve         Tag = "xkcp-kangarootwelve"
	XKCPKravatteWBC            Tag = "xkcp-kravette-wbc"
)

// MixFunc applies a primitive independently to every block-size-aligned block of src,
// writing the result to dst. It must tolerate dst and src being the same slice.
type MixFunc func(dst, src []byte) error

// Primitive is a single catalog entry: a symbolic tag, its human-readable name, its block
// size in bytes, and the function that implements it.
type Primitive struct {
	Tag       Tag
	Name      string
	BlockSize int
	Mix       MixFunc
}

var registry = sync.OnceValue(buildRegistry)

func buildRegistry() []Primitive {
	return []Primitive{
		{OpenSSLAES128, "openssl-aes-128", aesmix.BlockSize, aesmix.AES128},
		{WolfCryptAES128, "wolfcrypt-aes-128", aesmix.BlockSize, aesmix.AES128},
		{OpenSSLDaviesMeyer, "openssl-davies-meyer", aesmix.BlockSize, aesmix.DaviesMeyer},
		{WolfCryptDaviesMeyer, "wolfcrypt-davies-meyer", aesmix.BlockSize, aesmix.DaviesMeyer},
		{OpenSSLMatyasMeyerOseas, "openssl-matyas-meyer-oseas", aesmix.BlockSize, aesmix.MatyasMeyerOseas},
		{WolfCryptMatyasMeyerOseas, "wolfcrypt-matyas-meyer-oseas", aesmix.BlockSize, aesmix.MatyasMeyerOseas},

		{OpenSSLSHA3_256, "openssl-sha3-256", hashmix.BlockSize256, hashmix.SHA3_256},
		{WolfCryptSHA3_256, "wolfcrypt-sha3-256", hashmix.BlockSize256, hashmix.SHA3_256},
		{OpenSSLBLAKE2s, "openssl-blake2s", hashmix.BlockSize256, hashmix.BLAKE2s},
		{WolfCryptBLAKE2s, "wolfcrypt-blake2s", hashmix.BlockSize256, hashmix.BLAKE2s},
		{BLAKE3, "blake3-blake3", hashmix.BlockSize256, hashmix.BLAKE3},

		{AESNIMixCtr, "aes-ni-mixctr", mixctr.BlockSize, mixctr.Mix},
		{OpenSSLMixCtr, "openssl-mixctr", mixctr.BlockSize, mixctr.Mix},
		{WolfCryptMixCtr, "wolfcrypt-mixctr", mixctr.BlockSize, mixctr.Mix},
		{XKCPXoodyak, "xkcp-xoodyak", xofmix.BlockSize48, xofmix.Xoodyak},
		{XKCPXoofffWBC, "xkcp-xoofff-wbc", xofmix.BlockSize48, xofmix.XoofffWBC},

		{OpenSSLSHA3_512, "openssl-sha3-512", hashmix.BlockSize512, hashmix.SHA3_512},
		{WolfCryptSHA3_512, "wolfcrypt-sha3-512", hashmix.BlockSize512, hashmix.SHA3_512},
		{OpenSSLBLAKE2b, "openssl-blake2b", hashmix.BlockSize512, hashmix.BLAKE2b},
		{WolfCryptBLAKE2b, "wolfcrypt-blake2b", hashmix.BlockSize512, hashmix.BLAKE2b},

		{OpenSSLSHAKE256, "openssl-shake256", xofmix.BlockSize128, xofmix.SHAKE256},
		{WolfCryptSHAKE256, "wolfcrypt-shake256", xofmix.BlockSize128, xofmix.SHAKE256},
		{XKCPTurboSHAKE256, "xkcp-turboshake256", xofmix.BlockSize128, xofmix.TurboShake256},

		{OpenSSLSHAKE128, "openssl-shake128", xofmix.BlockSize160, xofmix.SHAKE128},
		{WolfCryptSHAKE128, "wolfcrypt-shake128", xofmix.BlockSize160, xofmix.SHAKE128},
		{XKCPTurboSHAKE128, "xkcp-turboshake128", xofmix.BlockSize160, xofmix.TurboShake128},
		{XKCPKangarooTwelve, "xkcp-kangarootwelve", xofmix.BlockSize160, xofmix.KT128},

		{XKCPKravatteWBC, "xkcp-kravette-wbc", xofmix.BlockSize192, xofmix.KravatteWBC},
	}
}

// Lookup returns the Primitive registered under tag.
func Lookup(tag Tag) (Primitive, error) {
	for _, p := range registry() {
		if p.Tag == tag {
			return p, nil
		}
	}
	return Primitive{}, fmt.Errorf("mixreg: unknown primitive tag %q", tag)
}

// LookupByName returns the Primitive registered under the given human-readable name. For
// every entry in this catalog, Name equals string(Tag), so this is equivalent to
// Lookup(Tag(name)); it exists separately because spec.md's CLI contract names the lookup
// "by name" distinctly from internal lookup by tag.
func LookupByName(name string) (Primitive, error) {
	return Lookup(Tag(name))
}

// All returns every registered Primitive, in catalog order, for iteration (e.g. by
// benchmarks or exhaustive interchange tests).
func All() []Primitive {
	all := registry()
	out := make([]Primitive, len(all))
	copy(out, all)
	return out
}

// LegalFanouts returns every fanout in {2,3,4} that evenly divides tag's block size, in
// ascending order. A primitive is usable with a fanout only when its block size divides
// evenly into that many equal mini-blocks.
func LegalFanouts(tag Tag) []int {
	p, err := Lookup(tag)
	if err != nil {
		return nil
	}
	var legal []int
	for _, f := range []int{2, 3, 4} {
		if p.BlockSize%f == 0 {
			legal = append(legal, f)
		}
	}
	return legal
}
