package bindless

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vexrender/core/driver"
	drivermock "github.com/vexrender/core/internal/drivermock"
)

func TestMain(m *testing.M) {
	Bind(drivermock.New())
	m.Run()
}

func TestTexturePoolAllocFreeRecyclesIndex(t *testing.T) {
	p := NewImage2DPool()
	h1, idx1, err := p.Allocate(driver.Dim3D{Width: 64, Height: 64, Depth: 1}, driver.RGBA8un, driver.URenderTarget|driver.UShaderSample, false)
	require.NoError(t, err)
	assert.NotZero(t, idx1)

	p.Free(h1)
	_, ok := p.View(h1)
	assert.False(t, ok, "freed handle must not resolve")

	h2, idx2, err := p.Allocate(driver.Dim3D{Width: 64, Height: 64, Depth: 1}, driver.RGBA8un, driver.URenderTarget|driver.UShaderSample, false)
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2, "freed bindless index should be recycled (free-list LIFO)")
	assert.NotEqual(t, h1, h2)
}

func TestTexturePoolDistinctIndicesWhileLive(t *testing.T) {
	p := NewImage2DPool()
	_, idx1, err := p.Allocate(driver.Dim3D{Width: 32, Height: 32, Depth: 1}, driver.RGBA8un, driver.UShaderSample, false)
	require.NoError(t, err)
	_, idx2, err := p.Allocate(driver.Dim3D{Width: 32, Height: 32, Depth: 1}, driver.RGBA8un, driver.UShaderSample, false)
	require.NoError(t, err)
	assert.NotEqual(t, idx1, idx2)
}

func TestBindlessBufferWriteOutOfRange(t *testing.T) {
	b, err := NewBindlessBuffer(4, 16, driver.UShaderRead)
	require.NoError(t, err)
	defer b.Destroy()

	err = b.Write(0, make([]byte, 16))
	assert.NoError(t, err)
	err = b.Write(3, make([]byte, 32))
	assert.Error(t, err)
}

func TestPerFrameBufferResolvesModuloFIF(t *testing.T) {
	p, err := NewPerFrameBuffer(2, 64, driver.UShaderConst)
	require.NoError(t, err)
	defer p.Destroy()

	assert.Same(t, p.At(0, 0), p.copies[0])
	assert.Same(t, p.At(1, 0), p.copies[1])
	assert.Same(t, p.At(0, 1), p.copies[1], "CURRENT read of frame 0's NEXT write resolves to copy 1")
	assert.Same(t, p.At(1, 1), p.copies[0])
}

func TestMeshStoreStoreGrowsAndFrees(t *testing.T) {
	m := NewMeshStore()
	defer m.Destroy()

	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i)
	}
	s, err := m.Store(bytes.NewReader(data), len(data))
	require.NoError(t, err)
	assert.Equal(t, data, m.Buffer().Bytes()[s.byteOffset():s.byteOffset()+s.byteLen()][:len(data)])
	m.Free(s)
}
