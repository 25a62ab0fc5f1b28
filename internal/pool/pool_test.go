package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocGetFree(t *testing.T) {
	p := New[int]()
	h1 := p.Alloc(10)
	h2 := p.Alloc(20)
	assert.NotEqual(t, h1, h2)

	v, ok := p.Get(h1)
	require.True(t, ok)
	assert.Equal(t, 10, v)

	p.Free(h1)
	_, ok = p.Get(h1)
	assert.False(t, ok, "stale handle must fail lookup after free")

	v, ok = p.Get(h2)
	require.True(t, ok)
	assert.Equal(t, 20, v)
}

func TestFreeSurvivesOtherFrees(t *testing.T) {
	p := New[string]()
	a := p.Alloc("a")
	b := p.Alloc("b")
	c := p.Alloc("c")

	p.Free(b)

	for _, h := range []Handle{a, c} {
		_, ok := p.Get(h)
		assert.True(t, ok)
	}
	_, ok := p.Get(b)
	assert.False(t, ok)
}

func TestReallocReusesFreedIndexWithNewGeneration(t *testing.T) {
	p := New[int]()
	h1 := p.Alloc(1)
	p.Free(h1)
	h2 := p.Alloc(2)

	assert.Equal(t, h1.Index, h2.Index, "freed index should be reused (free-list LIFO)")
	assert.NotEqual(t, h1.Gen, h2.Gen, "reused slot must carry a new generation")

	_, ok := p.Get(h1)
	assert.False(t, ok)
	v, ok := p.Get(h2)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestNilHandleNeverResolves(t *testing.T) {
	p := New[int]()
	p.Alloc(1)
	_, ok := p.Get(Nil)
	assert.False(t, ok)
}

func TestEachVisitsOnlyActiveEntries(t *testing.T) {
	p := New[int]()
	h1 := p.Alloc(1)
	_ = p.Alloc(2)
	p.Free(h1)

	seen := map[uint32]int{}
	p.Each(func(h Handle, v *int) { seen[h.Index] = *v })
	assert.Len(t, seen, 1)
}
