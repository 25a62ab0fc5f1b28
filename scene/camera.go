package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vexrender/core/internal/pool"
)

// ProjectionKind selects Camera's projection mode.
type ProjectionKind int

const (
	ProjPerspective ProjectionKind = iota
	ProjOrtho
)

// Frustum is six inward-facing planes in the form (normal, distance)
// such that a point p is inside the half-space when normal.Dot(p)+d >= 0.
type Frustum struct {
	Planes [6]mgl32.Vec4 // (nx, ny, nz, d)
}

// FrustumFromViewProj extracts the six frustum planes from a combined
// view-projection matrix using the standard Gribb/Hartmann plane
// extraction (left, right, bottom, top, near, far), normalizing each
// plane so later sphere tests are a single dot product.
func FrustumFromViewProj(vp mgl32.Mat4) Frustum {
	var f Frustum
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(i, 0), vp.At(i, 1), vp.At(i, 2), vp.At(i, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	planes := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}
	for i, p := range planes {
		n := mgl32.Vec3{p[0], p[1], p[2]}
		l := n.Len()
		if l == 0 {
			f.Planes[i] = p
			continue
		}
		f.Planes[i] = p.Mul(1 / l)
	}
	return f
}

// Camera owns a projection, a view matrix and the set of enabled
// passes. GPU attachments for a camera are transient frame-graph
// resources declared by the lighting package's per-camera passes,
// named by camera scope index (e.g. depth_cam_0), and allocated when
// the graph is compiled.
type Camera struct {
	Projection      ProjectionKind
	Width, Height   int
	Fovy            float32 // perspective
	OrthoHalfExtent float32 // ortho
	Near, Far       float32

	View mgl32.Mat4

	EnabledPasses EnabledPass
}

// AspectRatio is Width/Height (1 when Height is zero), computed on each
// call.
func (c *Camera) AspectRatio() float32 {
	if c.Height == 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

// ProjMatrix builds the projection matrix from the camera's current
// parameters.
func (c *Camera) ProjMatrix() mgl32.Mat4 {
	if c.Projection == ProjOrtho {
		e := c.OrthoHalfExtent
		return mgl32.Ortho(-e, e, -e, e, c.Near, c.Far)
	}
	return mgl32.Perspective(c.Fovy, c.AspectRatio(), c.Near, c.Far)
}

// ViewProj and Frustum are convenience derivations used by the
// visibility pipeline each frame.
func (c *Camera) ViewProj() mgl32.Mat4    { return c.ProjMatrix().Mul4(c.View) }
func (c *Camera) Frustum() Frustum        { return FrustumFromViewProj(c.ViewProj()) }

// CameraTable pools Cameras, one per viewport.
type CameraTable struct {
	pool *pool.Pool[Camera]
}

func NewCameraTable() *CameraTable { return &CameraTable{pool: pool.New[Camera]()} }

func (t *CameraTable) Add(c Camera) Handle           { return t.pool.Alloc(c) }
func (t *CameraTable) Get(h Handle) (Camera, bool)   { return t.pool.Get(h) }
func (t *CameraTable) GetPtr(h Handle) (*Camera, bool) { return t.pool.GetPtr(h) }
func (t *CameraTable) Remove(h Handle)                { t.pool.Free(h) }
func (t *CameraTable) Each(fn func(Handle, *Camera))  { t.pool.Each(fn) }
func (t *CameraTable) Len() int                        { return t.pool.Len() }
