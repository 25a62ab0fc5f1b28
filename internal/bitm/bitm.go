// Package bitm implements a growable bitmap used to back free-list style
// allocators: the bindless index pools (driver.Image/Buffer), the mesh
// vertex/index span allocator, and the generational handle pool all
// search this structure for the next free range instead of walking a
// linked free list.
package bitm

import (
	"math/bits"
	"unsafe"
)

// Word is the integer type backing one bitmap limb.
type Word interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Bitmap is a growable bitmap over words of type W. The zero value is an
// empty, ready-to-use bitmap.
type Bitmap[W Word] struct {
	words []W
	free  int
}

func wordWidth[W Word]() int { return int(unsafe.Sizeof(W(0))) * 8 }

// split decomposes a bit index into the word it falls in and a mask
// selecting it within that word.
func split[W Word](index int) (word int, mask W) {
	w := wordWidth[W]()
	return index / w, W(1) << uint(index%w)
}

// Len returns the total number of bits currently backed by the bitmap.
func (b *Bitmap[W]) Len() int { return len(b.words) * wordWidth[W]() }

// Free returns the number of unset (available) bits.
func (b *Bitmap[W]) Free() int { return b.free }

// Grow appends nwords additional words of capacity and returns the bit
// index at which the new extent begins (i.e. Len() before growing). A
// caller that immediately needs a range of nwords*bitsPerWord bits can
// rely on that range being contiguous and free.
func (b *Bitmap[W]) Grow(nwords int) (index int) {
	index = b.Len()
	if nwords <= 0 {
		return
	}
	b.words = append(b.words, make([]W, nwords)...)
	b.free += nwords * wordWidth[W]()
	return
}

// Set marks a bit as used.
func (b *Bitmap[W]) Set(index int) {
	word, mask := split[W](index)
	if b.words[word]&mask == 0 {
		b.words[word] |= mask
		b.free--
	}
}

// Unset marks a bit as free.
func (b *Bitmap[W]) Unset(index int) {
	word, mask := split[W](index)
	if b.words[word]&mask != 0 {
		b.words[word] &^= mask
		b.free++
	}
}

// IsSet reports whether a bit is used.
func (b *Bitmap[W]) IsSet(index int) bool {
	word, mask := split[W](index)
	return b.words[word]&mask != 0
}

// Search finds one free bit. ok is false only when Free() == 0.
func (b *Bitmap[W]) Search() (index int, ok bool) {
	if b.free == 0 {
		return 0, false
	}
	w := wordWidth[W]()
	for i, word := range b.words {
		if inv := ^word; inv != 0 {
			// TrailingZeros of the complement lands on the lowest
			// unset bit of word; width-sized words never overflow int.
			return i*w + trailingZeros(inv), true
		}
	}
	return 0, false
}

// trailingZeros counts trailing zero bits of a word of any supported
// width by routing through the widest unsigned integer math/bits knows.
func trailingZeros[W Word](w W) int {
	return bits.TrailingZeros64(uint64(w))
}

// SearchRange finds a contiguous run of n free bits and returns the
// index of its first bit.
func (b *Bitmap[W]) SearchRange(n int) (index int, ok bool) {
	if n <= 1 {
		return b.Search()
	}
	if b.free < n {
		return 0, false
	}
	total, run := b.Len(), 0
	for i := 0; i < total; i++ {
		if b.IsSet(i) {
			run = 0
			continue
		}
		if run == 0 {
			index = i
		}
		if run++; run == n {
			return index, true
		}
	}
	return 0, false
}

// Clear unsets every bit.
func (b *Bitmap[W]) Clear() {
	total := b.Len()
	if total == b.free {
		return
	}
	clear(b.words)
	b.free = total
}
