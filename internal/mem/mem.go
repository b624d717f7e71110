// Package mem provides low-level byte-slice helpers shared across the mix registry and the
// keymix engine: constant-shape XOR primitives, append-slicing, zeroization, and in-place
// range swapping.
package mem

// SliceForAppend extends in by n bytes and returns the head (the original contents of in)
// and tail (the newly appended bytes) as independent slices sharing the same backing
// array. The tail is zeroed only when a new array is allocated; when in already has the
// spare capacity, the tail keeps whatever that capacity held. It is the standard idiom for appending a fixed-size suffix (a tag, a
// counter, a permuted region) to a buffer without a separate allocation when in already has
// spare capacity.
func SliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}

// Zero overwrites every byte of b with zero. It is used to scrub working keys and
// intermediate key-schedule buffers on every exit path, including error paths.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Swap exchanges the n bytes starting at offsets i and j within b. The two ranges must not
// overlap.
func Swap(b []byte, i, j, n int) {
	Swap2(b, b, i, j, n)
}

// Swap2 exchanges the n bytes starting at offset i in a with the n bytes starting at offset
// j in b. a and b may be the same slice (in which case the two ranges must not overlap) or
// distinct slices.
func Swap2(a, b []byte, i, j, n int) {
	x, y := a[i:i+n], b[j:j+n]
	for k := 0; k < n; k++ {
		x[k], y[k] = y[k], x[k]
	}
}
