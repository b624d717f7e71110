// Command keymixer expands a key file into a pseudorandom keystream, or uses it to encrypt
// standard input (or a named input file), the CLI front end for the keymix package.
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/codahale/keymix"
	"github.com/codahale/keymix/internal/mixreg"
)

const (
	exitOK = iota
	exitIO
	exitConfig
	exitPrimitive
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("keymixer", flag.ContinueOnError)

	output := fs.String("output", "", "output path (default: stdout)")
	ivHex := fs.String("iv", "00000000000000000000000000000000", "128-bit IV as 32 lowercase hex characters")
	primitive := fs.String("primitive", string(mixreg.AESNIMixCtr), "mixing primitive tag")
	fanout := fs.Int("fanout", 3, "fanout (2, 3, or 4)")
	threads := fs.Int("threads", 1, "external threads (stream-generation parallelism)")
	internalThreads := fs.Int("internal-threads", 1, "internal threads per keymix invocation")
	pageSize := fs.Int("page-size", 1<<20, "output write-back page size in bytes")
	verbose := fs.Bool("verbose", false, "log timing and configuration to stderr")

	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: keymixer [flags] KEYFILE [INPUT]")
		fs.PrintDefaults()
		return exitConfig
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	keyPath := fs.Arg(0)
	key, err := os.ReadFile(keyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keymixer: reading key file: %v\n", err)
		return exitIO
	}

	ivBytes, err := hex.DecodeString(*ivHex)
	if err != nil || len(ivBytes) != 16 {
		fmt.Fprintln(os.Stderr, "keymixer: --iv must be 32 lowercase hex characters")
		return exitConfig
	}
	var iv [16]byte
	copy(iv[:], ivBytes)

	in, closeIn, err := openInput(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "keymixer: opening input: %v\n", err)
		return exitIO
	}
	defer closeIn()

	out, closeOut, err := openOutput(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keymixer: opening output: %v\n", err)
		return exitIO
	}
	defer closeOut()

	kctx, err := keymix.New(keymix.Context{
		Key:             key,
		Primitive:       mixreg.Tag(*primitive),
		Fanout:          *fanout,
		IV:              iv,
		EncryptMode:     true,
		ApplyIVCounter:  true,
		InternalThreads: *internalThreads,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "keymixer: %v\n", err)
		return exitConfig
	}

	if *verbose {
		log.Printf("keymixer: primitive=%s fanout=%d key_size=%d threads=%d internal_threads=%d",
			*primitive, *fanout, len(key), *threads, *internalThreads)
	}

	if err := encryptStream(ctx, kctx, in, out, *threads, *pageSize, *verbose); err != nil {
		var cfgErr *keymix.ConfigError
		var primErr *keymix.PrimitiveError
		switch {
		case errors.As(err, &cfgErr):
			fmt.Fprintf(os.Stderr, "keymixer: %v\n", err)
			return exitConfig
		case errors.As(err, &primErr):
			fmt.Fprintf(os.Stderr, "keymixer: %v\n", err)
			return exitPrimitive
		default:
			fmt.Fprintf(os.Stderr, "keymixer: %v\n", err)
			return exitIO
		}
	}

	return exitOK
}

// encryptStream drives in to out. With externalThreads <= 1 it streams in page-sized
// chunks through a keymix.EncryptWriter, bounding CLI memory use to page-size regardless of
// total stream length (supplementing the reference implementation's paged file write-back).
// With externalThreads > 1, true stream-generation parallelism requires every invocation's
// starting counter up front, which in turn requires the total length up front, so this path
// buffers all of in, drives it through keymix.Encrypt with the real thread count (the same
// invocationRange split driver.go's tests cover), and writes the result back in page-sized
// chunks.
func encryptStream(ctx context.Context, kctx *keymix.Context, in io.Reader, out io.Writer, externalThreads, pageSize int, verbose bool) error {
	if externalThreads <= 1 {
		return encryptStreamSequential(ctx, kctx, in, out, pageSize, verbose)
	}
	return encryptBufferParallel(ctx, kctx, in, out, externalThreads, pageSize, verbose)
}

func encryptStreamSequential(ctx context.Context, kctx *keymix.Context, in io.Reader, out io.Writer, pageSize int, verbose bool) error {
	w, err := keymix.NewEncryptWriter(kctx, out, 0)
	if err != nil {
		return err
	}

	page := make([]byte, pageSize)
	var total int64
	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			return ctx.Err()
		default:
		}

		n, readErr := in.Read(page)
		if n > 0 {
			if _, writeErr := w.Write(page[:n]); writeErr != nil {
				_ = w.Close()
				return writeErr
			}
			total += int64(n)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			_ = w.Close()
			return readErr
		}
	}

	if verbose {
		log.Printf("keymixer: wrote %d bytes", total)
	}

	return w.Close()
}

func encryptBufferParallel(ctx context.Context, kctx *keymix.Context, in io.Reader, out io.Writer, externalThreads, pageSize int, verbose bool) error {
	plaintext, err := readAllPaged(ctx, in, pageSize)
	if err != nil {
		return err
	}

	ciphertext := make([]byte, len(plaintext))
	if err := keymix.Encrypt(kctx, plaintext, ciphertext, externalThreads, 0); err != nil {
		return err
	}

	for off := 0; off < len(ciphertext); off += pageSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		end := min(off+pageSize, len(ciphertext))
		if _, err := out.Write(ciphertext[off:end]); err != nil {
			return err
		}
	}

	if verbose {
		log.Printf("keymixer: wrote %d bytes across %d external threads", len(ciphertext), externalThreads)
	}

	return nil
}

// readAllPaged reads in to completion in page-sized increments, checking ctx between reads
// so a large or never-ending stdin stream can still be interrupted.
func readAllPaged(ctx context.Context, in io.Reader, pageSize int) ([]byte, error) {
	var buf bytes.Buffer
	page := make([]byte, pageSize)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		n, err := in.Read(page)
		if n > 0 {
			buf.Write(page[:n])
		}
		if err != nil {
			if err == io.EOF {
				return buf.Bytes(), nil
			}
			return nil, err
		}
	}
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
