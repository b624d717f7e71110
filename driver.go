package keymix

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/codahale/keymix/internal/engine"
	"github.com/codahale/keymix/internal/mem"
)

// KeymixStream fills out with a deterministic keystream derived from ctx, expanding
// ctx.Key across ceil(len(out)/ctx.KeySize()) keymix invocations. When ctx.ApplyIVCounter
// is set, the working keys are re-keyed with ctx.IV and a counter starting at
// startingCounter; otherwise every invocation keymixes ctx.Key unchanged and
// startingCounter is ignored. ctx.EncryptMode must be false. Invocations are partitioned across up to externalThreads goroutines.
func KeymixStream(ctx *Context, out []byte, externalThreads int, startingCounter uint32) error {
	if ctx.EncryptMode {
		return &ConfigError{Reason: "KeymixStream requires EncryptMode == false"}
	}
	return stream(ctx, nil, out, externalThreads, startingCounter)
}

// Encrypt XORs in with the same keystream KeymixStream would produce, writing the result
// to out. len(in) must equal len(out). ctx.EncryptMode and ctx.ApplyIVCounter must both be
// true. Calling Encrypt twice with identical ctx, externalThreads, and startingCounter
// recovers the original plaintext, since XOR is its own inverse.
func Encrypt(ctx *Context, in, out []byte, externalThreads int, startingCounter uint32) error {
	if !ctx.EncryptMode || !ctx.ApplyIVCounter {
		return &ConfigError{Reason: "Encrypt requires EncryptMode and ApplyIVCounter"}
	}
	if len(in) != len(out) {
		return &ConfigError{Reason: fmt.Sprintf("in/out length mismatch: %d != %d", len(in), len(out))}
	}
	return stream(ctx, in, out, externalThreads, startingCounter)
}

func stream(ctx *Context, in, out []byte, externalThreads int, startingCounter uint32) error {
	keySize := ctx.KeySize()
	if len(out) == 0 {
		return nil
	}

	n := (len(out) + keySize - 1) / keySize // number of keymix invocations required

	t := externalThreads
	if t < 1 {
		t = 1
	}
	if t > n {
		t = n
	}
	if ctx.StreamMode == ChainedMode && t != 1 {
		return &ConfigError{Reason: "ChainedMode does not support external parallelism"}
	}

	errs := make([]error, t)
	var wg sync.WaitGroup
	wg.Add(t)
	for id := 0; id < t; id++ {
		lo, hi := invocationRange(n, t, id)
		go func(id, lo, hi int) {
			defer wg.Done()
			errs[id] = streamWorker(ctx, in, out, lo, hi, startingCounter)
		}(id, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func streamWorker(ctx *Context, in, out []byte, lo, hi int, startingCounter uint32) error {
	keySize := ctx.KeySize()
	workingKey := make([]byte, keySize)
	defer mem.Zero(workingKey)
	copy(workingKey, ctx.Key)

	counter := startingCounter + uint32(lo)
	if ctx.ApplyIVCounter {
		mem.XORInPlace(workingKey[:16], ctx.IV[:])
		addCounter(workingKey, counter)
	}

	keystream := make([]byte, keySize)
	defer mem.Zero(keystream)

	for i := lo; i < hi; i++ {
		off := i * keySize
		n := keySize
		if off+n > len(out) {
			n = len(out) - off
		}

		if err := engine.Keymix(ctx.primitive(), ctx.Fanout, workingKey, keystream, ctx.InternalThreads); err != nil {
			return &PrimitiveError{Tag: ctx.Primitive, Err: err}
		}

		if ctx.EncryptMode {
			copy(out[off:off+n], in[off:off+n])
			mem.XORInPlace(out[off:off+n], keystream[:n])
		} else {
			copy(out[off:off+n], keystream[:n])
		}

		switch ctx.StreamMode {
		case ChainedMode:
			copy(workingKey, keystream)
		default:
			if ctx.ApplyIVCounter {
				addCounter(workingKey, 1)
			}
		}
	}

	return nil
}

// addCounter adds delta to the 32-bit little-endian integer stored at byte offset 16..20
// of key, wrapping modulo 2^32. The field is always stored and interpreted in little-endian
// order regardless of host byte order, so no byte-swap-around-add is needed on a
// big-endian host: encoding/binary.LittleEndian already does the right thing there.
func addCounter(key []byte, delta uint32) {
	c := binary.LittleEndian.Uint32(key[16:20])
	binary.LittleEndian.PutUint32(key[16:20], c+delta)
}

// invocationRange returns the [lo, hi) keymix-invocation range owned by worker id out of n
// workers, with the first (total mod n) workers receiving one extra invocation, so that
// starting counters form a contiguous sequence across workers.
func invocationRange(total, n, id int) (lo, hi int) {
	base := total / n
	extra := total % n
	if id < extra {
		lo = id * (base + 1)
		hi = lo + base + 1
		return
	}
	lo = extra*(base+1) + (id-extra)*base
	hi = lo + base
	return
}
