package bindless

import (
	"io"

	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/internal/bitm"
)

// spanBlock is the allocation granularity of the global vertex/index
// buffer, in bytes.
const spanBlock = 256

// span identifies a byte range of the global vertex/index buffer in
// units of spanBlock.
type span struct{ first, last int }

func (s span) byteOffset() int64 { return int64(s.first) * spanBlock }
func (s span) byteLen() int64    { return int64(s.last-s.first) * spanBlock }

// MeshStore owns the single growable buffer backing every Mesh's vertex
// and index data. It is grown on demand and addressed through a
// free-list bitmap; growth always allocates a fresh device buffer and
// copies the old contents across, since no in-place resize exists in
// the explicit API.
type MeshStore struct {
	buf     driver.Buffer
	spanMap bitm.Bitmap[uint32]
}

// NewMeshStore creates an empty, host-visible mesh buffer store. A
// host-visible buffer is used so vertex/index uploads can write through
// directly, same as bindless.BindlessBuffer; GPU-local promotion would
// require the staging path used by ImmutableBuffer and is not needed for
// the data volumes this engine targets.
func NewMeshStore() *MeshStore { return &MeshStore{} }

// Store writes byteLen bytes read from src into the buffer and returns
// the span it now occupies, growing the backing buffer if necessary.
func (m *MeshStore) Store(src io.Reader, byteLen int) (span, error) {
	nb := (byteLen + spanBlock - 1) / spanBlock
	first, ok := m.spanMap.SearchRange(nb)
	if !ok {
		if err := m.grow(nb); err != nil {
			return span{}, err
		}
		first, ok = m.spanMap.SearchRange(nb)
		if !ok {
			return span{}, newBufErr("mesh store: span allocation failed after growth")
		}
	}
	dst := m.buf.Bytes()[int64(first)*spanBlock : int64(first)*spanBlock+int64(byteLen)]
	if _, err := io.ReadFull(src, dst); err != nil {
		return span{}, err
	}
	for i := 0; i < nb; i++ {
		m.spanMap.Set(first + i)
	}
	return span{first, first + nb}, nil
}

// Free releases a previously stored span back to the free list.
func (m *MeshStore) Free(s span) {
	for i := s.first; i < s.last; i++ {
		m.spanMap.Unset(i)
	}
}

func (m *MeshStore) grow(nblocksNeeded int) error {
	const growWords = 64 // 64 * 32 bits = 2048 blocks per growth step
	prevBlocks := m.spanMap.Len()
	words := (nblocksNeeded + growWords*32 - 1) / (growWords * 32)
	if words < 1 {
		words = 1
	}
	m.spanMap.Grow(words * growWords)
	newCap := int64(m.spanMap.Len()) * spanBlock

	buf, err := gpu.NewBuffer(newCap, true, driver.UVertexData|driver.UIndexData)
	if err != nil {
		return ErrOutOfDeviceMemory
	}
	if m.buf != nil {
		copy(buf.Bytes(), m.buf.Bytes()[:prevBlocks*spanBlock])
		m.buf.Destroy()
	}
	m.buf = buf
	return nil
}

func (m *MeshStore) Buffer() driver.Buffer { return m.buf }

func (m *MeshStore) Destroy() {
	if m == nil {
		return
	}
	if m.buf != nil {
		m.buf.Destroy()
	}
}
