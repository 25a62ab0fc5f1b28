package scene

import "github.com/vexrender/core/internal/pool"

// Mesh describes one primitive's allocation in the global vertex/index
// buffer. Allocation of the backing storage itself lives in
// bindless.MeshStore; this struct is the CPU-visible record a Node
// references by Handle.
type Mesh struct {
	AABB         AABB
	FirstIndex   int
	VertexOffset int
	IndexCount   int
}

// MeshTable pools Meshes, created per asset and freed on unload.
type MeshTable struct {
	pool *pool.Pool[Mesh]
}

// NewMeshTable creates an empty MeshTable.
func NewMeshTable() *MeshTable { return &MeshTable{pool: pool.New[Mesh]()} }

func (t *MeshTable) Add(m Mesh) Handle       { return t.pool.Alloc(m) }
func (t *MeshTable) Get(h Handle) (Mesh, bool) { return t.pool.Get(h) }
func (t *MeshTable) Remove(h Handle)          { t.pool.Free(h) }
func (t *MeshTable) Len() int                  { return t.pool.Len() }
