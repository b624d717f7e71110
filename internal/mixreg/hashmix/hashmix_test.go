package hashmix

import (
	"bytes"
	"testing"
)

func blocks(blockSize, n int) []byte {
	b := make([]byte, blockSize*n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestDigestFunctionsDeterministic(t *testing.T) {
	tests := []struct {
		name      string
		blockSize int
		fn        func(dst, src []byte) error
	}{
		{"SHA3_256", BlockSize256, SHA3_256},
		{"SHA3_512", BlockSize512, SHA3_512},
		{"BLAKE2s", BlockSize256, BLAKE2s},
		{"BLAKE2b", BlockSize512, BLAKE2b},
		{"BLAKE3", BlockSize256, BLAKE3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := blocks(tc.blockSize, 3)
			dst1 := make([]byte, len(src))
			dst2 := make([]byte, len(src))
			if err := tc.fn(dst1, src); err != nil {
				t.Fatal(err)
			}
			if err := tc.fn(dst2, src); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(dst1, dst2) {
				t.Error("not deterministic")
			}
			if bytes.Equal(dst1, src) {
				t.Error("output equals input")
			}

			// Each block-sized chunk must be digested independently.
			if bytes.Equal(dst1[:tc.blockSize], dst1[tc.blockSize:2*tc.blockSize]) {
				t.Error("two distinct input blocks produced the same digest")
			}
		})
	}
}

func TestDigestFunctionsInPlace(t *testing.T) {
	src := blocks(BlockSize256, 2)
	want := make([]byte, len(src))
	if err := SHA3_256(want, src); err != nil {
		t.Fatal(err)
	}

	buf := bytes.Clone(src)
	if err := SHA3_256(buf, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, want) {
		t.Error("SHA3_256(buf, buf) diverged from SHA3_256(dst, src)")
	}
}

func TestRejectsMisalignedInput(t *testing.T) {
	src := make([]byte, BlockSize256+1)
	dst := make([]byte, len(src))
	if err := SHA3_256(dst, src); err == nil {
		t.Error("SHA3_256 accepted a non-block-aligned input")
	}
}
