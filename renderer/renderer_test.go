package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vexrender/core/config"
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/internal/drivermock"
	"github.com/vexrender/core/scene"
)

type fakeSurface struct{ w, h int }

func (f fakeSurface) Extent() (int, int) { return f.w, f.h }

func fakeLoader(name string) ([]byte, error) { return []byte("bytecode:" + name), nil }

func testConfig() config.RenderConfig {
	cfg := config.DefaultRenderConfig(64, 64)
	cfg.FramesInFlight = 2
	cfg.MaxDrawables = 32
	cfg.MaxLights = 8
	cfg.MaxMaterials = 8
	cfg.MaxMeshes = 8
	return cfg
}

func newOffscreenTarget(t *testing.T, gpu driver.GPU, cfg config.RenderConfig) driver.ImageView {
	t.Helper()
	img, err := gpu.NewImage(driver.BGRA8sRGB, driver.Dim3D{Width: cfg.Width, Height: cfg.Height, Depth: 1}, 1, 1, 1, driver.URenderTarget)
	require.NoError(t, err)
	view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
	require.NoError(t, err)
	return view
}

func sceneWithLight() *scene.Scene {
	scn := scene.New()
	scn.Lights.Add(scene.Light{
		Kind:       scene.LightDirectional,
		Color:      mgl32.Vec3{1, 1, 1},
		Intensity:  1,
		Direction:  mgl32.Vec3{0, -1, 0},
		Radius:     10,
		CastShadow: true,
	})
	scn.Cameras.Add(scene.Camera{
		Projection: scene.ProjPerspective,
		Width:      64, Height: 64, Fovy: 1, Near: 0.1, Far: 100,
		View: mgl32.Ident4(),
	})
	return scn
}

func TestNewOffscreenRendersFrame(t *testing.T) {
	gpu := drivermock.New()
	cfg := testConfig()

	off, err := NewOffscreen(gpu, cfg, fakeLoader)
	require.NoError(t, err)
	defer off.Free()

	scn := sceneWithLight()
	target := newOffscreenTarget(t, gpu, cfg)

	for i := 0; i < 3; i++ {
		require.NoError(t, off.Render(scn, 1, target))
	}
}

func TestOffscreenRenderRequiresTarget(t *testing.T) {
	gpu := drivermock.New()
	cfg := testConfig()

	off, err := NewOffscreen(gpu, cfg, fakeLoader)
	require.NoError(t, err)
	defer off.Free()

	err = off.Render(sceneWithLight(), 1, nil)
	assert.Error(t, err)
}

func TestNewOnscreenAcquiresAndPresents(t *testing.T) {
	gpu := drivermock.New()
	cfg := testConfig()

	on, err := NewOnscreen(gpu, fakeSurface{800, 600}, cfg, fakeLoader)
	require.NoError(t, err)
	defer on.Free()

	scn := sceneWithLight()
	for i := 0; i < 3; i++ {
		require.NoError(t, on.Render(scn, 1))
	}
}

func TestRenderAssignsShadowIndexToCastingLight(t *testing.T) {
	gpu := drivermock.New()
	cfg := testConfig()

	off, err := NewOffscreen(gpu, cfg, fakeLoader)
	require.NoError(t, err)
	defer off.Free()

	scn := sceneWithLight()
	target := newOffscreenTarget(t, gpu, cfg)
	require.NoError(t, off.Render(scn, 1, target))

	var found bool
	scn.Lights.Each(func(_ scene.Handle, l *scene.Light) {
		found = true
		assert.NotEqual(t, uint32(scene.InvalidShadowIndex), l.ShadowIndex)
	})
	assert.True(t, found)
}

func TestRenderReusesCompiledGraphAcrossStaticFrames(t *testing.T) {
	gpu := drivermock.New()
	cfg := testConfig()

	off, err := NewOffscreen(gpu, cfg, fakeLoader)
	require.NoError(t, err)
	defer off.Free()

	scn := sceneWithLight()
	target := newOffscreenTarget(t, gpu, cfg)

	require.NoError(t, off.Render(scn, 1, target))
	require.True(t, off.hasGraph)
	first := off.graph

	for i := 0; i < 3; i++ {
		require.NoError(t, off.Render(scn, 1, target))
		assert.Same(t, first, off.graph, "graph should not recompile when topology is unchanged")
	}
}

func TestRenderRecompilesGraphOnTopologyChange(t *testing.T) {
	gpu := drivermock.New()
	cfg := testConfig()

	off, err := NewOffscreen(gpu, cfg, fakeLoader)
	require.NoError(t, err)
	defer off.Free()

	scn := sceneWithLight()
	target := newOffscreenTarget(t, gpu, cfg)

	require.NoError(t, off.Render(scn, 1, target))
	first := off.graph

	scn.Lights.Add(scene.Light{
		Kind:       scene.LightPoint,
		Color:      mgl32.Vec3{1, 1, 1},
		Intensity:  1,
		Position:   mgl32.Vec3{1, 1, 1},
		Radius:     5,
		CastShadow: true,
	})

	require.NoError(t, off.Render(scn, 1, target))
	assert.NotSame(t, first, off.graph, "adding a shadow-casting light must trigger a recompile")
}

func TestBucketKeyCoversEveryBucket(t *testing.T) {
	seen := make(map[string]bool)
	for _, b := range allBuckets {
		key := bucketKey(b)
		assert.NotEqual(t, "bucket", key, "unmapped bucket %d", b)
		assert.False(t, seen[key], "duplicate bucket key %q", key)
		seen[key] = true
	}
}
