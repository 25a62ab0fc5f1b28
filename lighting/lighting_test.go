package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/framegraph"
	"github.com/vexrender/core/internal/drivermock"
	"github.com/vexrender/core/scene"
)

func TestMain(m *testing.M) {
	gpu := drivermock.New()
	framegraph.Bind(gpu)
	m.Run()
}

func newMockPipelineAndPass(t *testing.T) (driver.Pipeline, driver.RenderPass) {
	gpu := drivermock.New()
	pipe, err := gpu.NewPipeline(&driver.GraphState{})
	require.NoError(t, err)
	pass, err := gpu.NewRenderPass(nil, nil)
	require.NoError(t, err)
	return pipe, pass
}

func TestBucketNameIsInjective(t *testing.T) {
	buckets := []scene.Bucket{
		scene.BucketOpaque, scene.BucketTransparent, scene.BucketWireframe,
		scene.BucketRandomColor, scene.BucketLineStrip, scene.BucketSprite,
	}
	seen := make(map[string]bool)
	for _, b := range buckets {
		name := bucketName(b)
		assert.False(t, seen[name], "duplicate bucket name for %v", b)
		seen[name] = true
	}
}

func TestRegisterGBufferPassCreatesAttachmentsAndCompiles(t *testing.T) {
	pipe, pass := newMockPipelineAndPass(t)

	var decls []framegraph.PassDecl
	RegisterGBufferPass(&decls, 1920, 1080, 1024, pipe, pass)

	g, err := framegraph.Compile(decls, framegraph.InstanceContext{NumCameras: 1, FramesInFlight: 2})
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestAmbientPassReadsGBufferAndWritesFinal(t *testing.T) {
	pipe, pass := newMockPipelineAndPass(t)

	var decls []framegraph.PassDecl
	RegisterGBufferPass(&decls, 800, 600, 256, pipe, pass)
	RegisterAmbientPass(&decls, 800, 600, 8, 1, pipe, pass)

	g, err := framegraph.Compile(decls, framegraph.InstanceContext{NumCameras: 1, FramesInFlight: 2})
	require.NoError(t, err)

	cmd, err := drivermock.New().NewCmdBuffer()
	require.NoError(t, err)
	g.Execute(0, cmd, nil)
}

func TestDirectLightPassSelectsPipelinePerKind(t *testing.T) {
	pointPipe, pass := newMockPipelineAndPass(t)
	spotPipe, _ := newMockPipelineAndPass(t)
	dirPipe, _ := newMockPipelineAndPass(t)

	ud := &directUserData{pipes: DirectPipelines{Point: pointPipe, Spot: spotPipe, Directional: dirPipe}, pass: pass}

	assert.Equal(t, pointPipe, ud.pipelineFor(scene.LightPoint))
	assert.Equal(t, spotPipe, ud.pipelineFor(scene.LightSpot))
	assert.Equal(t, dirPipe, ud.pipelineFor(scene.LightDirectional))
}

func TestDirectLightPassSkipsLightsWithoutShadowButStillDraws(t *testing.T) {
	pipe, pass := newMockPipelineAndPass(t)

	scn := scene.New()
	scn.Lights.Add(scene.Light{Kind: scene.LightDirectional, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1, ShadowIndex: scene.InvalidShadowIndex})

	var decls []framegraph.PassDecl
	RegisterGBufferPass(&decls, 640, 480, 64, pipe, pass)
	RegisterAmbientPass(&decls, 640, 480, 8, 1, pipe, pass)
	RegisterDirectLightPass(&decls, 640, 480, DirectPipelines{Point: pipe, Spot: pipe, Directional: pipe}, pass, scn)

	g, err := framegraph.Compile(decls, framegraph.InstanceContext{NumCameras: 1, FramesInFlight: 2})
	require.NoError(t, err)

	cmd, err := drivermock.New().NewCmdBuffer()
	require.NoError(t, err)
	g.Execute(0, cmd, nil)
}

func TestForwardPassReadsFinalAndDepth(t *testing.T) {
	pipe, pass := newMockPipelineAndPass(t)

	var decls []framegraph.PassDecl
	RegisterGBufferPass(&decls, 512, 512, 128, pipe, pass)
	RegisterForwardPass(&decls, 512, 512, 128, scene.BucketTransparent, pipe, pass)

	g, err := framegraph.Compile(decls, framegraph.InstanceContext{NumCameras: 1, FramesInFlight: 2})
	require.NoError(t, err)

	cmd, err := drivermock.New().NewCmdBuffer()
	require.NoError(t, err)
	g.Execute(0, cmd, nil)
}

// orderedPass appends name to *order each time a pass creates a
// framebuffer through it, recording execution order.
type orderedPass struct {
	driver.RenderPass
	name  string
	order *[]string
}

func (p orderedPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	*p.order = append(*p.order, p.name)
	return p.RenderPass.NewFB(iv, width, height, layers)
}

func TestPresentAndUIOverlayCompileInOrder(t *testing.T) {
	pipe, pass := newMockPipelineAndPass(t)
	img, err := drivermock.New().NewImage(driver.BGRA8sRGB, driver.Dim3D{Width: 256, Height: 256, Depth: 1}, 1, 1, 1, driver.URenderTarget)
	require.NoError(t, err)
	view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
	require.NoError(t, err)

	var order []string
	var decls []framegraph.PassDecl
	RegisterGBufferPass(&decls, 256, 256, 32, pipe, pass)
	RegisterAmbientPass(&decls, 256, 256, 8, 1, pipe, pass) // writes final_color, which present reads
	RegisterPresentPass(&decls, 256, 256, view, pipe, orderedPass{pass, "present", &order})
	RegisterUIOverlayPass(&decls, 256, 256, 32, pipe, orderedPass{pass, "ui", &order})

	g, err := framegraph.Compile(decls, framegraph.InstanceContext{NumCameras: 1, FramesInFlight: 2})
	require.NoError(t, err)

	cmd, err := drivermock.New().NewCmdBuffer()
	require.NoError(t, err)
	g.Execute(0, cmd, nil)
	assert.Equal(t, []string{"present", "ui"}, order)
}
