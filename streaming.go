package keymix

import (
	"io"

	"github.com/codahale/keymix/internal/engine"
	"github.com/codahale/keymix/internal/mem"
)

// EncryptWriter wraps an io.Writer, XORing each ctx.KeySize()-sized chunk written through it
// with the next block of ctx's keystream before forwarding it. There is no length framing
// and no authentication tag: spec.md's
// Non-goals explicitly exclude authentication, so EncryptWriter is a raw keystream cipher,
// not an AEAD envelope.
//
// The wrapped Context must have EncryptMode and ApplyIVCounter set. A single EncryptWriter
// always runs its own CounterMode/ChainedMode sequence single-threaded; use Encrypt
// directly for external-thread parallelism over data already held in memory.
type EncryptWriter struct {
	ctx        *Context
	w          io.Writer
	workingKey []byte
	keystream  []byte
	buf        []byte
	counter    uint32
	closed     bool
}

// NewEncryptWriter returns an EncryptWriter wrapping w, starting its keystream at
// startingCounter.
func NewEncryptWriter(ctx *Context, w io.Writer, startingCounter uint32) (*EncryptWriter, error) {
	if !ctx.EncryptMode || !ctx.ApplyIVCounter {
		return nil, &ConfigError{Reason: "EncryptWriter requires EncryptMode and ApplyIVCounter"}
	}
	keySize := ctx.KeySize()
	e := &EncryptWriter{
		ctx:        ctx,
		w:          w,
		workingKey: make([]byte, keySize),
		keystream:  make([]byte, keySize),
		buf:        make([]byte, 0, keySize),
		counter:    startingCounter,
	}
	copy(e.workingKey, ctx.Key)
	mem.XORInPlace(e.workingKey[:16], ctx.IV[:])
	addCounter(e.workingKey, e.counter)
	return e, nil
}

func (e *EncryptWriter) Write(p []byte) (n int, err error) {
	total := len(p)
	for len(p) > 0 {
		keySize := e.ctx.KeySize()
		room := keySize - len(e.buf)
		take := min(room, len(p))
		e.buf = append(e.buf, p[:take]...)
		p = p[take:]

		if len(e.buf) == keySize {
			if err := e.flushBlock(); err != nil {
				return total - len(p), err
			}
		}
	}
	return total, nil
}

func (e *EncryptWriter) flushBlock() error {
	if err := engine.Keymix(e.ctx.primitive(), e.ctx.Fanout, e.workingKey, e.keystream, e.ctx.InternalThreads); err != nil {
		return &PrimitiveError{Tag: e.ctx.Primitive, Err: err}
	}
	mem.XORInPlace(e.buf, e.keystream[:len(e.buf)])
	if _, err := e.w.Write(e.buf); err != nil {
		return err
	}
	e.buf = e.buf[:0]

	switch e.ctx.StreamMode {
	case ChainedMode:
		copy(e.workingKey, e.keystream)
	default:
		addCounter(e.workingKey, 1)
	}
	return nil
}

// Close flushes any buffered partial final block and zeroizes the working key. Call it
// after the last Write; calls after the first do nothing and return nil.
func (e *EncryptWriter) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	var err error
	if len(e.buf) > 0 {
		err = e.flushBlock()
	}
	mem.Zero(e.workingKey)
	mem.Zero(e.keystream)
	return err
}

// EncryptReader wraps an io.Reader, XORing each ctx.KeySize()-sized chunk read through it
// with the next block of ctx's keystream. See EncryptWriter for the matching write side;
// the two must be constructed with identical Context, startingCounter, and StreamMode to
// round-trip.
type EncryptReader struct {
	ctx        *Context
	r          io.Reader
	workingKey []byte
	keystream  []byte
	pending    []byte
	counter    uint32
}

// NewEncryptReader returns an EncryptReader wrapping r, starting its keystream at
// startingCounter.
func NewEncryptReader(ctx *Context, r io.Reader, startingCounter uint32) (*EncryptReader, error) {
	if !ctx.EncryptMode || !ctx.ApplyIVCounter {
		return nil, &ConfigError{Reason: "EncryptReader requires EncryptMode and ApplyIVCounter"}
	}
	keySize := ctx.KeySize()
	e := &EncryptReader{
		ctx:        ctx,
		r:          r,
		workingKey: make([]byte, keySize),
		keystream:  make([]byte, keySize),
		counter:    startingCounter,
	}
	copy(e.workingKey, ctx.Key)
	mem.XORInPlace(e.workingKey[:16], ctx.IV[:])
	addCounter(e.workingKey, e.counter)
	return e, nil
}

func (e *EncryptReader) Read(p []byte) (n int, err error) {
	if len(e.pending) == 0 {
		keySize := e.ctx.KeySize()
		block := make([]byte, keySize)
		read, err := io.ReadFull(e.r, block)
		if read == 0 {
			return 0, err
		}
		block = block[:read]

		if err := engine.Keymix(e.ctx.primitive(), e.ctx.Fanout, e.workingKey, e.keystream, e.ctx.InternalThreads); err != nil {
			return 0, &PrimitiveError{Tag: e.ctx.Primitive, Err: err}
		}
		mem.XORInPlace(block, e.keystream[:len(block)])
		e.pending = block

		switch e.ctx.StreamMode {
		case ChainedMode:
			copy(e.workingKey, e.keystream)
		default:
			addCounter(e.workingKey, 1)
		}
	}

	n = copy(p, e.pending)
	e.pending = e.pending[n:]
	return n, nil
}

// Close zeroizes the reader's working key and keystream buffers.
func (e *EncryptReader) Close() error {
	mem.Zero(e.workingKey)
	mem.Zero(e.keystream)
	return nil
}

var (
	_ io.WriteCloser = (*EncryptWriter)(nil)
	_ io.ReadCloser  = (*EncryptReader)(nil)
)
