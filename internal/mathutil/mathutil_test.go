package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextPow2(t *testing.T) {
	cases := map[uint32]uint32{
		0: 0, 1: 1, 3: 4, 5: 8, 17: 32, 1000: 1024, 1024: 1024,
	}
	for in, want := range cases {
		assert.Equal(t, want, NextPow2(in), "NextPow2(%d)", in)
	}
}

func TestIlog2(t *testing.T) {
	cases := map[uint32]int{1: 0, 1024: 10, 4: 2}
	for in, want := range cases {
		assert.Equal(t, want, Ilog2(in), "Ilog2(%d)", in)
	}
}

func TestAlign(t *testing.T) {
	cases := []struct{ v, a, want int }{
		{0, 4, 0}, {1, 4, 4}, {3, 4, 4}, {5, 4, 8}, {15, 8, 16},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Align(c.v, c.a), "Align(%d,%d)", c.v, c.a)
	}
}

func TestAlignIdempotent(t *testing.T) {
	for _, a := range []int{1, 2, 4, 8, 16, 256} {
		for v := 0; v < 1000; v += 7 {
			once := Align(v, a)
			twice := Align(once, a)
			assert.Equal(t, once, twice)
		}
	}
}

func TestMipLevels(t *testing.T) {
	// A pyramid built from a 512x512 source (halved, then rounded down
	// to a power of two) has mip 0 at 256 and needs ceil(log2(256))+1 = 9
	// levels.
	assert.Equal(t, 9, MipLevels(256))
	assert.Equal(t, 1, MipLevels(1))
	assert.Equal(t, 1, MipLevels(0))
}
