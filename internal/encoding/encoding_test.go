package encoding

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

func TestBytesViewRoundTrip(t *testing.T) {
	rng := newTestRNG(t)

	t.Run("int32", func(t *testing.T) {
		src := make([]int32, 1000)
		for i := range src {
			src[i] = rng.Int32()
		}
		b := Bytes(src)
		if len(b) != 4000 {
			t.Fatalf("len(Bytes) = %d, want 4000", len(b))
		}
		// Copy into a fresh aligned buffer to make sure View does not just alias src.
		buf := make([]int64, 500)
		copy(Bytes(buf), b)
		got := View[int32](Bytes(buf), len(src))
		if !slices.Equal(got, src) {
			t.Fatal("int32 round trip mismatch")
		}
	})

	t.Run("float64", func(t *testing.T) {
		src := []float64{0, -1.5, math.Inf(1), math.SmallestNonzeroFloat64, 42}
		got := View[float64](Bytes(src), len(src))
		if !slices.Equal(got, src) {
			t.Fatalf("float64 round trip mismatch: %v", got)
		}
	})
}

func TestBytesEmpty(t *testing.T) {
	if b := Bytes[int64](nil); b != nil {
		t.Errorf("Bytes(nil) = %v, want nil", b)
	}
	if v := View[int64](nil, 0); v == nil || len(v) != 0 {
		t.Errorf("View(nil, 0) = %v, want empty non-nil slice", v)
	}
}

func TestViewPanics(t *testing.T) {
	buf := make([]int64, 4)
	b := Bytes(buf)

	t.Run("short", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic for short buffer")
			}
		}()
		View[int64](b, 5)
	})

	t.Run("misaligned", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic for misaligned buffer")
			}
		}()
		View[int64](b[1:], 2)
	})
}

func TestAlignUp(t *testing.T) {
	for _, tt := range []struct{ in, want int64 }{
		{0, 0}, {1, 8}, {7, 8}, {8, 8}, {9, 16}, {4000, 4000}, {4001, 4008},
	} {
		if got := AlignUp(tt.in); got != tt.want {
			t.Errorf("AlignUp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
