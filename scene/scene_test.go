package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBucketOfPartitionsExactlyOne(t *testing.T) {
	cases := []struct {
		flags NodeFlags
		want  Bucket
	}{
		{FlagVisible, BucketOpaque},
		{FlagVisible | FlagMaterialTransparent, BucketTransparent},
		{FlagVisible | FlagSprite, BucketSprite},
		{FlagVisible | FlagMaterialWireframe, BucketWireframe},
		{FlagVisible | FlagSprite | FlagMaterialTransparent, BucketSprite},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BucketOf(c.flags))
	}
}

func TestActiveNodesMatchingCountsOnlyVisible(t *testing.T) {
	s := New()
	s.Nodes.Add(Node{Flags: FlagVisible})
	s.Nodes.Add(Node{Flags: FlagVisible | FlagMaterialTransparent})
	s.Nodes.Add(Node{Flags: 0}) // not visible

	assert.Equal(t, 1, s.ActiveNodesMatching(BucketOpaque))
	assert.Equal(t, 1, s.ActiveNodesMatching(BucketTransparent))
}

func TestFrustumFromViewProjIsNormalized(t *testing.T) {
	cam := Camera{
		Projection: ProjPerspective,
		Width:      1920, Height: 1080,
		Fovy: mgl32.DegToRad(60), Near: 0.1, Far: 100,
		View: mgl32.Ident4(),
	}
	fr := cam.Frustum()
	for _, p := range fr.Planes {
		n := mgl32.Vec3{p[0], p[1], p[2]}
		assert.InDelta(t, 1.0, n.Len(), 1e-4)
	}
}

func TestAABBCenterRadius(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, b.Center())
	assert.InDelta(t, float64(mgl32.Vec3{1, 1, 1}.Len()), float64(b.Radius()), 1e-5)
}
