package feistel

import "testing"

var testKeys = []Index{1, 2, 3, 4}

func TestPrecompute(t *testing.T) {
	tests := []struct {
		n    Index
		want Precomputed
	}{
		{1, Precomputed{LeftMask: 0b10, RightMask: 0b01, HalfBits: 1}},
		{4, Precomputed{LeftMask: 0b10, RightMask: 0b01, HalfBits: 1}},
		{5, Precomputed{LeftMask: 0b1100, RightMask: 0b0011, HalfBits: 2}},
		{24, Precomputed{LeftMask: 56, RightMask: 7, HalfBits: 3}},
		{64, Precomputed{LeftMask: 56, RightMask: 7, HalfBits: 3}},
		{65, Precomputed{LeftMask: 240, RightMask: 15, HalfBits: 4}},
	}

	for _, tt := range tests {
		if got := Precompute(tt.n); got != tt.want {
			t.Errorf("Precompute(%d) = %+v, want %+v", tt.n, got, tt.want)
		}
	}
}

func TestPermuteGolden(t *testing.T) {
	const n = 24
	want := []Index{13, 18, 9, 5, 12, 4, 15, 2, 6, 3, 1, 14, 22, 17, 20, 10, 19, 23, 0, 8, 21, 16, 11, 7}

	p := Precompute(n)
	for i := Index(0); i < n; i++ {
		if got := Permute(n, i, testKeys, p); got != want[i] {
			t.Errorf("Permute(%d) = %d, want %d", i, got, want[i])
		}
	}
}

func TestPermuteIsBijection(t *testing.T) {
	for _, n := range []Index{1, 2, 7, 24, 100, 1000, 4096} {
		p := Precompute(n)
		seen := make([]bool, n)
		for i := Index(0); i < n; i++ {
			j := Permute(n, i, testKeys, p)
			if j >= n {
				t.Fatalf("n=%d: Permute(%d) = %d out of domain", n, i, j)
			}
			if seen[j] {
				t.Fatalf("n=%d: Permute(%d) = %d collides", n, i, j)
			}
			seen[j] = true
		}
	}
}

func TestInvertPermute(t *testing.T) {
	for _, n := range []Index{3, 24, 513, 8000} {
		p := Precompute(n)
		for i := Index(0); i < n; i++ {
			j := Permute(n, i, testKeys, p)
			if back := InvertPermute(n, j, testKeys, p); back != i {
				t.Fatalf("n=%d: InvertPermute(Permute(%d)) = %d", n, i, back)
			}
		}
	}
}

func TestKeysChangePermutation(t *testing.T) {
	const n = 256
	p := Precompute(n)
	other := []Index{5, 6, 7, 8}

	same := 0
	for i := Index(0); i < n; i++ {
		if Permute(n, i, testKeys, p) == Permute(n, i, other, p) {
			same++
		}
	}
	if same == n {
		t.Error("different keys produced the same permutation")
	}
}

func TestPrecomputeLimit(t *testing.T) {
	if got := Precompute(MaxElements); got.HalfBits != 31 {
		t.Errorf("Precompute(MaxElements).HalfBits = %d, want 31", got.HalfBits)
	}

	defer func() {
		if recover() == nil {
			t.Error("Precompute(MaxElements+1) did not panic")
		}
	}()
	Precompute(MaxElements + 1)
}
