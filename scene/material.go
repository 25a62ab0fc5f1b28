package scene

import "github.com/vexrender/core/internal/pool"

// Material holds PBR factors plus the bindless indices of the textures
// that back them. A zero index means "use the factor, no texture."
type Material struct {
	AlbedoFactor    [4]float32
	MetallicFactor  float32
	RoughnessFactor float32
	EmissiveFactor  [3]float32

	AlbedoIndex    uint32
	MetallicIndex  uint32
	NormalIndex    uint32
	EmissiveIndex  uint32
}

// MaterialTable pools Materials, referenced by draws via NodeData.
type MaterialTable struct {
	pool *pool.Pool[Material]
}

func NewMaterialTable() *MaterialTable { return &MaterialTable{pool: pool.New[Material]()} }

func (t *MaterialTable) Add(m Material) Handle           { return t.pool.Alloc(m) }
func (t *MaterialTable) Get(h Handle) (Material, bool)   { return t.pool.Get(h) }
func (t *MaterialTable) Remove(h Handle)                  { t.pool.Free(h) }
func (t *MaterialTable) Len() int                          { return t.pool.Len() }
