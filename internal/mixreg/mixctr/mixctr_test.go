package mixctr

import (
	"bytes"
	"testing"
)

func TestMixDeterministic(t *testing.T) {
	src := make([]byte, BlockSize*3)
	for i := range src {
		src[i] = byte(i)
	}

	dst1 := make([]byte, len(src))
	dst2 := make([]byte, len(src))
	if err := Mix(dst1, src); err != nil {
		t.Fatal(err)
	}
	if err := Mix(dst2, src); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dst1, dst2) {
		t.Error("Mix is not deterministic")
	}
	if bytes.Equal(dst1, src) {
		t.Error("Mix did not change the input")
	}
}

func TestMixInPlace(t *testing.T) {
	src := make([]byte, BlockSize*2)
	for i := range src {
		src[i] = byte(i * 3)
	}

	want := make([]byte, len(src))
	if err := Mix(want, src); err != nil {
		t.Fatal(err)
	}

	buf := bytes.Clone(src)
	if err := Mix(buf, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, want) {
		t.Error("Mix(buf, buf) diverged from Mix(dst, src)")
	}
}

func TestMixDifferentKeysDiverge(t *testing.T) {
	a := make([]byte, BlockSize)
	b := make([]byte, BlockSize)
	b[0] = 1 // differs only in the key's first byte

	outA := make([]byte, BlockSize)
	outB := make([]byte, BlockSize)
	_ = Mix(outA, a)
	_ = Mix(outB, b)

	if bytes.Equal(outA, outB) {
		t.Error("Mix produced identical output for different macro-blocks")
	}
}

func TestRejectsMisalignedInput(t *testing.T) {
	src := make([]byte, BlockSize+1)
	dst := make([]byte, len(src))
	if err := Mix(dst, src); err == nil {
		t.Error("Mix accepted a non-block-aligned input")
	}
}
