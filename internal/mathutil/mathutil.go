// Package mathutil implements the scalar helpers used by the
// depth-pyramid mip chain: power-of-two rounding, integer log2 and
// alignment.
package mathutil

// NextPow2 returns the smallest power of two >= v, or 0 for v <= 0.
func NextPow2(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v + 1
}

// Ilog2 returns floor(log2(v)) for v > 0. Callers must not pass 0.
func Ilog2(v uint32) int {
	n := -1
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}

// Align rounds v up to the nearest multiple of a, a power of two.
// Align(0, a) == 0.
func Align(v, a int) int {
	return (v + a - 1) &^ (a - 1)
}

// MipLevels returns the number of mip levels in a chain whose base level
// is maxDim texels wide, i.e. ceil(log2(maxDim)) + 1.
func MipLevels(maxDim uint32) int {
	if maxDim == 0 {
		return 1
	}
	return Ilog2(NextPow2(maxDim)) + 1
}
