package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vexrender/core/config"
	"github.com/vexrender/core/scene"
)

func TestAllocateSlotsSkipsNonCastingAndCapsAtLimit(t *testing.T) {
	scn := scene.New()
	var handles []scene.Handle
	for i := 0; i < config.MaxShadowMaps+3; i++ {
		h := scn.Lights.Add(scene.Light{
			Kind:       scene.LightPoint,
			Position:   mgl32.Vec3{float32(i), 0, 0},
			Radius:     10,
			CastShadow: true,
		})
		handles = append(handles, h)
	}
	scn.Lights.Add(scene.Light{Kind: scene.LightPoint, CastShadow: false})

	assigns, indices := AllocateSlots(scn)
	require.Len(t, assigns, config.MaxShadowMaps)

	seen := make(map[int]bool)
	for _, a := range assigns {
		assert.False(t, seen[a.Slot], "slot indices must be unique")
		seen[a.Slot] = true
		assert.Less(t, a.Slot, config.MaxShadowMaps)
	}

	overflowCount := 0
	for _, h := range handles {
		if indices[h] == scene.InvalidShadowIndex {
			overflowCount++
		}
	}
	assert.Equal(t, 3, overflowCount, "lights beyond the cap must get the invalid sentinel")
}

func TestSpotViewLooksTowardTarget(t *testing.T) {
	l := &scene.Light{
		Kind:      scene.LightSpot,
		Position:  mgl32.Vec3{0, 5, 0},
		Direction: mgl32.Vec3{0, -1, 0},
		Radius:    20,
		ConeOuter: mgl32.DegToRad(30),
	}
	d := spotData(l)
	// The light's own position transformed by its view matrix must
	// land at the origin (standard look-at property).
	p := d.View.Mul4x1(mgl32.Vec4{l.Position.X(), l.Position.Y(), l.Position.Z(), 1})
	assert.InDelta(t, 0, p.X(), 1e-4)
	assert.InDelta(t, 0, p.Y(), 1e-4)
	assert.InDelta(t, 0, p.Z(), 1e-4)
	// One unit along Direction must land on the view's -Z axis.
	q := d.View.Mul4x1(l.Position.Add(l.Direction).Vec4(1))
	assert.InDelta(t, 0, q.X(), 1e-4)
	assert.InDelta(t, 0, q.Y(), 1e-4)
	assert.InDelta(t, -1, q.Z(), 1e-4)
}

func TestDirectionalOrthoHalfExtentRespectsMinimum(t *testing.T) {
	l := &scene.Light{
		Kind:      scene.LightDirectional,
		Direction: mgl32.Vec3{0, -1, 0},
		Radius:    0.1, // below the 0.5 floor
	}
	d := directionalData(l)
	assert.NotEqual(t, mgl32.Mat4{}, d.Proj)
	assert.Equal(t, float32(0.1), d.Near)
	assert.Equal(t, float32(0.2), d.Far)
	// Ortho's x scale is 2/(right-left) = 2/(2*0.5) with the floor applied.
	assert.InDelta(t, 2, d.Proj[0], 1e-6)
}

func TestPointProjectionIsSquareNinetyDegrees(t *testing.T) {
	l := &scene.Light{Kind: scene.LightPoint, Radius: 5}
	d := pointData(l)
	assert.Equal(t, mgl32.Ident4(), d.View)
	assert.Equal(t, float32(0.1), d.Near)
	// A 90-degree, aspect-1 perspective scales x and y by cot(45°) = 1.
	assert.InDelta(t, 1, d.Proj[0], 1e-5)
	assert.InDelta(t, d.Proj[5], d.Proj[0], 1e-6)
}

func TestTextureIndexPicksCubeForPointLights(t *testing.T) {
	assert.Equal(t, uint32(7), TextureIndex(scene.LightPoint, 3, 7))
	assert.Equal(t, uint32(3), TextureIndex(scene.LightSpot, 3, 7))
}

func TestPointFaceViewsCoversAllSixAxisDirections(t *testing.T) {
	pos := mgl32.Vec3{1, 2, 3}
	views := PointFaceViews(pos)

	seen := make(map[mgl32.Vec3]bool)
	for i, v := range views {
		// Each face looks down its own axis: one unit along it lands on -Z.
		dir := pointFaceDirs[i].dir
		seen[dir] = true
		q := v.Mul4x1(pos.Add(dir).Vec4(1))
		assert.InDeltaf(t, -1, q.Z(), 1e-4, "face %d", i)

		// Each face's view must still map the light's own position to
		// the origin, same look-at property TestSpotViewLooksTowardTarget
		// checks for the single-view spot/directional case.
		p := v.Mul4x1(mgl32.Vec4{pos.X(), pos.Y(), pos.Z(), 1})
		assert.InDeltaf(t, 0, p.X(), 1e-4, "face %d", i)
		assert.InDeltaf(t, 0, p.Y(), 1e-4, "face %d", i)
		assert.InDeltaf(t, 0, p.Z(), 1e-4, "face %d", i)
	}
	assert.Len(t, seen, 6)
}

func TestRefreshDataUpdatesSlotsInPlace(t *testing.T) {
	d0 := &Data{Near: 1}
	d1 := &Data{Near: 2}
	slotData := map[int]*Data{0: d0, 1: d1}

	assigns := []Assignment{
		{Slot: 0, Data: Data{Near: 10}},
		{Slot: 1, Data: Data{Near: 20}},
	}
	RefreshData(slotData, assigns)

	assert.Equal(t, float32(10), d0.Near)
	assert.Equal(t, float32(20), d1.Near)

	// A slot absent from the map (a topology the caller hasn't compiled
	// into passes yet) must be skipped rather than panicking.
	RefreshData(slotData, []Assignment{{Slot: 5, Data: Data{Near: 99}}})
}
