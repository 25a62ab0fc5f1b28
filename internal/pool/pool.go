// Package pool implements the generational handle pool used throughout
// the render core: a sparse array with a free list, where each slot
// carries a generation counter so that a handle captured before a slot
// was freed and reused fails lookup instead of aliasing new data.
package pool

import "github.com/vexrender/core/internal/bitm"

// Handle identifies an entry in a Pool. The zero Handle is never valid:
// index 0 is reserved as the sentinel "absent" value.
type Handle struct {
	Index uint32
	Gen   uint32
}

// Nil is the reserved "absent" handle.
var Nil = Handle{}

// Valid reports whether h is not the sentinel handle. It does not imply
// the handle resolves in any particular Pool.
func (h Handle) Valid() bool { return h.Index != 0 }

type slot[T any] struct {
	gen    uint32
	active bool
	value  T
}

// Pool is a sparse array of T accessed through generation-checked
// Handles. Create one with New, which reserves index 0 so that Alloc
// never hands it out, keeping it free as the sentinel.
type Pool[T any] struct {
	slots []slot[T]
	free  bitm.Bitmap[uint32]
}

func newPool[T any]() *Pool[T] {
	p := &Pool[T]{slots: make([]slot[T], 1)}
	p.free.Grow(1)
	p.free.Set(0) // index 0 reserved, never free.
	return p
}

// New creates an empty Pool.
func New[T any]() *Pool[T] { return newPool[T]() }

// Alloc reserves a slot, sets its value and returns a Handle with a
// fresh generation. The lowest free index is reused first, because
// Bitmap.Search returns the lowest clear bit, and growth only happens
// once no clear bit remains.
func (p *Pool[T]) Alloc(value T) Handle {
	idx, ok := p.free.Search()
	if !ok {
		idx = p.free.Grow(1)
		p.slots = append(p.slots, make([]slot[T], p.free.Len()-len(p.slots))...)
	}
	p.free.Set(idx)
	s := &p.slots[idx]
	s.active = true
	s.value = value
	return Handle{Index: uint32(idx), Gen: s.gen}
}

// Get resolves h to its value. ok is false if h is stale (generation
// mismatch) or the slot was freed.
func (p *Pool[T]) Get(h Handle) (value T, ok bool) {
	if !h.Valid() || int(h.Index) >= len(p.slots) {
		return
	}
	s := &p.slots[h.Index]
	if !s.active || s.gen != h.Gen {
		return
	}
	return s.value, true
}

// GetPtr is like Get but returns a pointer into the pool's backing
// storage, valid until the next structural mutation (Alloc growth).
func (p *Pool[T]) GetPtr(h Handle) (value *T, ok bool) {
	if !h.Valid() || int(h.Index) >= len(p.slots) {
		return
	}
	s := &p.slots[h.Index]
	if !s.active || s.gen != h.Gen {
		return
	}
	return &s.value, true
}

// Free releases h's slot, bumping its generation so any outstanding
// copies of h fail future Get calls.
func (p *Pool[T]) Free(h Handle) {
	v, ok := p.Get(h)
	_ = v
	if !ok {
		return
	}
	s := &p.slots[h.Index]
	var zero T
	s.value = zero
	s.active = false
	s.gen++
	p.free.Unset(int(h.Index))
}

// Len returns the number of active entries.
func (p *Pool[T]) Len() int {
	return p.free.Len() - p.free.Free() - 1 // index 0 is set but never active
}

// Each calls fn for every active entry, in index order.
func (p *Pool[T]) Each(fn func(Handle, *T)) {
	for i := 1; i < len(p.slots); i++ {
		s := &p.slots[i]
		if s.active {
			fn(Handle{Index: uint32(i), Gen: s.gen}, &s.value)
		}
	}
}
