// Package keymix implements the Keymix keyed pseudorandom expansion engine: a layered
// mix/spread transformation over a key whose macro-block count is a power of a small
// fanout, an encryption/expansion driver that re-keys the transformation with an IV and
// counter to produce a keystream larger than the key, and a stream-encryption front end
// that XORs that keystream with plaintext.
package keymix

import (
	"fmt"

	"github.com/codahale/keymix/internal/mixreg"
)

// StreamMode selects how successive keymix invocations within one stream are keyed.
type StreamMode int

const (
	// CounterMode derives each invocation's working key independently from ctx.IV and an
	// invocation counter (spec.md §4.4). It is the only mode covered by the
	// thread-independence and counter-monotonicity properties, since every invocation's
	// input is fixed in advance and invocations may run in any order or in parallel.
	CounterMode StreamMode = iota

	// ChainedMode derives each invocation's working key from the previous invocation's
	// keymix output (an OFB-style re-keying, supplementing spec.md from the original
	// source's keymix_ofb_mode). Because each key depends on the prior output, a
	// ChainedMode stream must be generated sequentially: it has no external-thread
	// parallelism and is not covered by the thread-independence property.
	ChainedMode
)

// Context is an immutable configuration bag for a Keymix call: the key, the chosen
// primitive and fanout, the IV, and the mode flags controlling encryption and re-keying.
// A Context's Key is never mutated; every worker copies it into a private buffer before
// applying the IV/counter transform.
type Context struct {
	Key             []byte
	Primitive       mixreg.Tag
	Fanout          int
	IV              [16]byte
	EncryptMode     bool
	ApplyIVCounter  bool
	StreamMode      StreamMode
	InternalThreads int

	prim mixreg.Primitive
}

// New validates cfg against every invariant in spec.md §3 (key size a multiple of the
// primitive's block size and shaped as block_size*fanout^L, fanout in {2,3,4} and dividing
// the block size) and returns an immutable, ready-to-use Context. Configuration errors are
// returned synchronously, before any keymix work begins.
func New(cfg Context) (*Context, error) {
	if cfg.Fanout != 2 && cfg.Fanout != 3 && cfg.Fanout != 4 {
		return nil, &ConfigError{Reason: fmt.Sprintf("fanout must be 2, 3, or 4, got %d", cfg.Fanout)}
	}

	prim, err := mixreg.Lookup(cfg.Primitive)
	if err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}

	if prim.BlockSize%cfg.Fanout != 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf(
			"primitive %q has block size %d, not divisible by fanout %d", cfg.Primitive, prim.BlockSize, cfg.Fanout)}
	}

	if len(cfg.Key) == 0 || len(cfg.Key)%prim.BlockSize != 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf(
			"key size %d is not a positive multiple of block size %d", len(cfg.Key), prim.BlockSize)}
	}

	m := len(cfg.Key) / prim.BlockSize
	if !isPowerOfFanout(m, cfg.Fanout) {
		return nil, &ConfigError{Reason: fmt.Sprintf(
			"key holds %d macro-blocks, not a power of fanout %d", m, cfg.Fanout)}
	}

	if cfg.EncryptMode && !cfg.ApplyIVCounter {
		return nil, &ConfigError{Reason: "encrypt mode requires apply_iv_counter"}
	}

	if cfg.InternalThreads < 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("invalid internal thread count %d", cfg.InternalThreads)}
	}
	if cfg.InternalThreads == 0 {
		cfg.InternalThreads = 1
	}

	cfg.prim = prim
	return &cfg, nil
}

// KeySize returns the length of ctx.Key in bytes.
func (ctx *Context) KeySize() int { return len(ctx.Key) }

// BlockSize returns the block size, in bytes, of ctx's chosen primitive.
func (ctx *Context) BlockSize() int { return ctx.prim.BlockSize }

func (ctx *Context) primitive() mixreg.Primitive { return ctx.prim }

func isPowerOfFanout(m, fanout int) bool {
	if m < 1 {
		return false
	}
	for m > 1 {
		if m%fanout != 0 {
			return false
		}
		m /= fanout
	}
	return true
}
