// Package shadow assigns shadow-casting lights to a bounded pool of
// render-target slots and derives each slot's view/projection data.
package shadow

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vexrender/core/config"
	"github.com/vexrender/core/scene"
)

// Data is the per-slot payload uploaded to the shadow-data bindless
// buffer, consumed by the direct-light pass's fragment shader.
type Data struct {
	View      mgl32.Mat4
	Proj      mgl32.Mat4
	Planes    [6]mgl32.Vec4
	Near, Far float32
	Position  mgl32.Vec3
	Direction mgl32.Vec3
}

// Assignment binds one shadow-casting light to a compact slot.
type Assignment struct {
	Light scene.Handle
	Slot  int
	Kind  scene.LightKind
	Data  Data
}

// AllocateSlots assigns compact slot indices 0..k-1 to active
// shadow-casting lights, in encounter order. Lights beyond
// config.MaxShadowMaps receive scene.InvalidShadowIndex and are
// dropped from the returned assignment list; the caller is
// responsible for writing that sentinel back onto the Light itself.
func AllocateSlots(scn *scene.Scene) ([]Assignment, map[scene.Handle]uint32) {
	var out []Assignment
	indices := make(map[scene.Handle]uint32)

	scn.Lights.Each(func(h scene.Handle, l *scene.Light) {
		if !l.CastShadow {
			indices[h] = scene.InvalidShadowIndex
			return
		}
		if len(out) >= config.MaxShadowMaps {
			indices[h] = scene.InvalidShadowIndex
			return
		}
		slot := len(out)
		indices[h] = uint32(slot)
		out = append(out, Assignment{
			Light: h,
			Slot:  slot,
			Kind:  l.Kind,
			Data:  deriveData(l),
		})
	})
	return out, indices
}

func deriveData(l *scene.Light) Data {
	switch l.Kind {
	case scene.LightSpot:
		return spotData(l)
	case scene.LightDirectional:
		return directionalData(l)
	default:
		return pointData(l)
	}
}

func spotData(l *scene.Light) Data {
	up := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(l.Direction.Dot(up))) > 0.95 {
		up = mgl32.Vec3{0, 0, 1}
	}
	target := l.Position.Add(l.Direction)
	view := mgl32.LookAtV(l.Position, target, up)

	fovy := 2 * l.ConeOuter
	if fovy < 1e-4 {
		fovy = 1e-4
	}
	near := float32(0.1)
	far := l.Radius
	if far < near+0.1 {
		far = near + 0.1
	}
	proj := mgl32.Perspective(fovy, 1, near, far)

	d := Data{View: view, Proj: proj, Near: near, Far: far, Position: l.Position, Direction: l.Direction}
	d.Planes = scene.FrustumFromViewProj(proj.Mul4(view)).Planes
	return d
}

func directionalData(l *scene.Light) Data {
	half := l.Radius
	if half < 0.5 {
		half = 0.5
	}
	eye := l.Position.Sub(l.Direction.Mul(l.Radius))
	up := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(l.Direction.Dot(up))) > 0.95 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(eye, eye.Add(l.Direction), up)
	near := float32(0.1)
	far := 2 * l.Radius
	proj := mgl32.Ortho(-half, half, -half, half, near, far)

	d := Data{View: view, Proj: proj, Near: near, Far: far, Position: l.Position, Direction: l.Direction}
	d.Planes = scene.FrustumFromViewProj(proj.Mul4(view)).Planes
	return d
}

func pointData(l *scene.Light) Data {
	near := float32(0.1)
	far := l.Radius
	if far < near+0.1 {
		far = near + 0.1
	}
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, near, far)
	return Data{
		View:     mgl32.Ident4(),
		Proj:     proj,
		Near:     near,
		Far:      far,
		Position: l.Position,
	}
}

// pointFaceDirs holds each cube face's look direction and up vector, in
// the +X,-X,+Y,-Y,+Z,-Z order driver.IViewCube layers are addressed in.
var pointFaceDirs = [6]struct{ dir, up mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

// PointFaceViews returns the six face view matrices a point light's cube
// shadow map is rendered with, one depth pass per face in place of a
// geometry-shader layer replication (this module's driver abstraction
// has no geometry-shader stage). Each face shares the single 90-degree
// perspective projection pointData derives for the light.
func PointFaceViews(pos mgl32.Vec3) [6]mgl32.Mat4 {
	var views [6]mgl32.Mat4
	for i, f := range pointFaceDirs {
		views[i] = mgl32.LookAtV(pos, pos.Add(f.dir), f.up)
	}
	return views
}

// RefreshData writes each assignment's freshly-derived Data into the
// slot it occupies in slotData. Lights move every frame even when the
// set of shadow-casting slots doesn't change, so the renderer calls
// this every frame regardless of whether the frame graph topology
// (and thus Setup, which first populates slotData) was recompiled.
func RefreshData(slotData map[int]*Data, assigns []Assignment) {
	for _, a := range assigns {
		if d, ok := slotData[a.Slot]; ok {
			*d = a.Data
		}
	}
}

// TextureIndex returns the bindless shader-visible index the lighting
// pass's push constants should carry for a slot of the given kind.
// 2D shadow maps and cube shadow maps live in separate bindless
// texture pools, so the caller passes both candidate indices and this
// just picks the one matching kind.
func TextureIndex(kind scene.LightKind, index2D, indexCube uint32) uint32 {
	if kind == scene.LightPoint {
		return indexCube
	}
	return index2D
}
