// Package barrier implements a reusable, round-counting rendezvous for a fixed number of
// goroutines, the concurrency primitive the keymix engine uses to synchronize workers
// between diffusion levels.
package barrier

import "sync"

// Barrier is a cyclic rendezvous point for exactly N goroutines. Unlike sync.WaitGroup, a
// Barrier may be waited on repeatedly: each call to Wait blocks until N goroutines have
// called it for the current round, then releases all of them and advances to the next
// round.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	n       int
	waiting int
	round   uint64
}

// New returns a Barrier for exactly n participants. n must be at least 1.
func New(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks the calling goroutine until n goroutines (n as passed to New) have called
// Wait for the current round. The last arrival wakes every waiter and advances the round
// counter; the others observe the round change and return.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	arrivalRound := b.round
	b.waiting++
	if b.waiting == b.n {
		b.waiting = 0
		b.round++
		b.cond.Broadcast()
		return
	}

	for b.round == arrivalRound {
		b.cond.Wait()
	}
}
