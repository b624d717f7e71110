// Package engine implements the layered keymix transformation: L alternating mix and
// spread passes over a buffer whose macro-block count is a power of the chosen fanout,
// executed single-threaded or across a pool of internal worker goroutines.
package engine

import (
	"fmt"
	"sync"

	"github.com/codahale/keymix/internal/barrier"
	"github.com/codahale/keymix/internal/mixreg"
	"github.com/codahale/keymix/internal/spread"
)

// Keymix runs the full L-layer keymix transformation of in into out using primitive p and
// the given fanout, using up to threads internal goroutines. len(in) and len(out) must
// equal p.BlockSize * fanout^(L-1) for some L >= 1; threads is clamped to [1, M] where M is
// the macro-block count.
func Keymix(p mixreg.Primitive, fanout int, in, out []byte, threads int) error {
	blockSize := p.BlockSize
	size := len(in)
	if size != len(out) {
		return fmt.Errorf("engine: in/out length mismatch: %d != %d", size, len(out))
	}
	if size == 0 || size%blockSize != 0 {
		return fmt.Errorf("engine: size %d is not a positive multiple of block size %d", size, blockSize)
	}

	m := size / blockSize
	l, err := levels(m, fanout)
	if err != nil {
		return err
	}

	t := clamp(threads, 1, m)

	if t == 1 {
		return keymixSingle(p, fanout, blockSize, in, out, l)
	}
	return keymixParallel(p, fanout, blockSize, in, out, l, t)
}

func keymixSingle(p mixreg.Primitive, fanout, blockSize int, in, out []byte, l int) error {
	if err := p.Mix(out, in); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	for level := 1; level < l; level++ {
		spread.Spread(out, level, fanout, blockSize)
		if err := p.Mix(out, out); err != nil {
			return fmt.Errorf("engine: %w", err)
		}
	}
	return nil
}

func keymixParallel(p mixreg.Primitive, fanout, blockSize int, in, out []byte, l, t int) error {
	syncLevels := l - 1
	if isPowerOf(t, fanout) {
		syncLevels = logBase(t, fanout)
	}
	unsyncLevels := l - syncLevels

	bar := barrier.New(t)
	errs := make([]error, t)

	var wg sync.WaitGroup
	wg.Add(t)
	for id := 0; id < t; id++ {
		go func(id int) {
			defer wg.Done()
			errs[id] = worker(p, fanout, blockSize, in, out, l, t, id, unsyncLevels, bar)
		}(id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func worker(p mixreg.Primitive, fanout, blockSize int, in, out []byte, l, t, id, unsyncLevels int, bar *barrier.Barrier) error {
	m := len(in) / blockSize
	lo, hi := spread.MacroRange(m, t, id)
	chunkIn := in[lo*blockSize : hi*blockSize]
	chunkOut := out[lo*blockSize : hi*blockSize]

	// Unsynchronized prefix: one mix, then unsyncLevels-1 spread/mix pairs confined to
	// this worker's own chunk.
	if err := p.Mix(chunkOut, chunkIn); err != nil {
		return fmt.Errorf("engine: worker %d: %w", id, err)
	}
	for level := 1; level < unsyncLevels; level++ {
		spread.Spread(chunkOut, level, fanout, blockSize)
		if err := p.Mix(chunkOut, chunkOut); err != nil {
			return fmt.Errorf("engine: worker %d: %w", id, err)
		}
	}

	// Synchronized suffix: every level from unsyncLevels to l-1 requires a whole-buffer
	// spread_chunks, which needs every worker's chunk-owned swaps to have landed before any
	// worker mixes, and every worker's mix to finish before the next level's spread begins.
	for level := unsyncLevels; level < l; level++ {
		bar.Wait()
		spread.SpreadChunks(out, len(out), id, t, level, fanout, blockSize)
		bar.Wait()
		if err := p.Mix(chunkOut, chunkOut); err != nil {
			return fmt.Errorf("engine: worker %d: %w", id, err)
		}
	}

	return nil
}

// levels returns L = 1 + log_fanout(m), validating that m is exactly fanout^(L-1).
func levels(m, fanout int) (int, error) {
	if m <= 0 {
		return 0, fmt.Errorf("engine: non-positive macro-block count %d", m)
	}
	l := 1
	n := m
	for n > 1 {
		if n%fanout != 0 {
			return 0, fmt.Errorf("engine: macro-block count %d is not a power of fanout %d", m, fanout)
		}
		n /= fanout
		l++
	}
	return l, nil
}

func isPowerOf(n, base int) bool {
	if n < 1 {
		return false
	}
	for n > 1 {
		if n%base != 0 {
			return false
		}
		n /= base
	}
	return true
}

func logBase(n, base int) int {
	l := 0
	for n > 1 {
		n /= base
		l++
	}
	return l
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
