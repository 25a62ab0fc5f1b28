package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPyramidExtentIsPowerOfTwoAtOrBelowHalfSource(t *testing.T) {
	w, h := PyramidExtent(1920, 1080)
	assert.Equal(t, 512, w) // floor(pow2, 960) = 512
	assert.Equal(t, 512, h) // floor(pow2, 540) = 512
	assert.LessOrEqual(t, w, 1920/2)
	assert.LessOrEqual(t, h, 1080/2)
}

func TestPyramidExtentExactPowerOfTwoSource(t *testing.T) {
	w, h := PyramidExtent(1024, 1024)
	assert.Equal(t, 512, w)
	assert.Equal(t, 512, h)
}

func TestPyramidLevelsMatchesMipChainFormula(t *testing.T) {
	assert.Equal(t, 1, PyramidLevels(1, 1))
	assert.Equal(t, 10, PyramidLevels(512, 256))
	assert.Equal(t, 11, PyramidLevels(1024, 1024))
}

func TestDrawCountInvariantHolds(t *testing.T) {
	assert.True(t, DrawCountInvariant(5, 10))
	assert.True(t, DrawCountInvariant(10, 10))
	assert.False(t, DrawCountInvariant(11, 10))
}

func TestBucketBufferNamesAreDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for _, b := range Buckets {
		name := bucketBufferName(b, "draw_commands")
		assert.False(t, seen[name], "duplicate buffer name for bucket %v", b)
		seen[name] = true
	}
}
