package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vexrender/core/internal/pool"
)

// Light is a point, spot or directional light. ShadowIndex is
// assigned at sync time by the shadow subsystem's slot allocator
// (shadow.AllocateSlots) and reset to InvalidShadowIndex every sync.
type Light struct {
	Kind      LightKind
	Color     mgl32.Vec3
	Intensity float32

	Position  mgl32.Vec3
	Direction mgl32.Vec3 // spot, directional
	Radius    float32    // point, spot (range), directional (shadow ortho extent)

	ConeInner float32 // spot, radians
	ConeOuter float32 // spot, radians

	CastShadow  bool
	ShadowIndex uint32
}

// LightTable pools Lights for one scene.
type LightTable struct {
	pool *pool.Pool[Light]
}

func NewLightTable() *LightTable { return &LightTable{pool: pool.New[Light]()} }

func (t *LightTable) Add(l Light) Handle       { return t.pool.Alloc(l) }
func (t *LightTable) Get(h Handle) (Light, bool) { return t.pool.Get(h) }
func (t *LightTable) GetPtr(h Handle) (*Light, bool) { return t.pool.GetPtr(h) }
func (t *LightTable) Remove(h Handle)          { t.pool.Free(h) }
func (t *LightTable) Each(fn func(Handle, *Light)) { t.pool.Each(fn) }
func (t *LightTable) Len() int                  { return t.pool.Len() }
