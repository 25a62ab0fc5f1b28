package lighting

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/framegraph"
	"github.com/vexrender/core/scene"
)

// Point and spot lights draw a procedural volume mesh generated from
// gl_VertexIndex in the vertex shader (no vertex/index buffer, the same
// idiom RegisterAmbientPass's fullscreen triangle uses) rather than a
// flat triangle, so their baked front/back-face cull state has a real
// volume to act on. pointVolumeVerts/spotVolumeVerts are the non-indexed
// vertex counts those shaders expect (must stay in lockstep with the
// tessellation light_volume.vert generates).
const (
	pointVolumeVerts = 240 // icosphere, 80 triangles
	spotVolumeVerts  = 96  // 16-segment cone, 32 triangles

	// PushConstRange.Size values for each direct-light pipeline: lightIdx
	// + shadowIndex (8 bytes) plus whatever per-draw volume parameters
	// that kind's vertex shader needs, each packed as a vec4 to keep a
	// predictable 16-byte-aligned layout on the shader side.
	PointPushConstSize       = 8 + 16      // + posRadius vec4(xyz=position, w=radius)
	SpotPushConstSize        = 8 + 16 + 16 // + posRadius + dirCosOuter vec4(xyz=direction, w=cos(ConeOuter))
	DirectionalPushConstSize = 8
)

// DirectPipelines holds the three baked graphics pipelines the direct
// light pass alternates between: one per light kind, since each needs
// a different cull mode baked into driver.RasterState (point volumes
// cull front faces so they still rasterize with the camera inside,
// spot volumes cull back faces, directional covers the full screen).
// None of them enables depth testing, and the direct-light render pass
// has no depth attachment.
type DirectPipelines struct {
	Point       driver.Pipeline
	Spot        driver.Pipeline
	Directional driver.Pipeline
}

// directUserData is the per-camera closure state the direct light pass
// needs at Execute time. scn supplies the light list to iterate; light
// data itself (color, position, shadow index) lives in the bindless
// light buffer and is addressed by index through push constants.
type directUserData struct {
	width, height int
	pipes         DirectPipelines
	pass          driver.RenderPass
	scn           *scene.Scene

	final framegraph.ResourceId
}

// RegisterDirectLightPass appends the per-light direct lighting pass to
// decls, scoped ScopePerCamera. It must run after RegisterAmbientPass:
// each light's contribution blends additively (ONE, ONE) on top of the
// ambient term already resolved into final_color.
func RegisterDirectLightPass(decls *[]framegraph.PassDecl, width, height int, pipes DirectPipelines, pass driver.RenderPass, scn *scene.Scene) {
	ud := &directUserData{width: width, height: height, pipes: pipes, pass: pass, scn: scn}
	*decls = append(*decls, framegraph.PassDecl{
		Name:     "direct_lighting",
		Scope:    framegraph.ScopePerCamera,
		Queue:    framegraph.QueueGraphics,
		Setup:    ud.setup,
		Execute:  ud.execute,
		UserData: ud,
		Enabled:  true,
	})
}

func (u *directUserData) setup(s *framegraph.PassSetup, _ any) {
	final, ok := s.FindTexture(AttrFinal)
	if !ok {
		return
	}
	s.WriteTexture(final, framegraph.OffsetCurrent)
	u.final = final

	for _, name := range []string{AttrPosition, AttrNormal, AttrAlbedo, AttrMetalRough} {
		if id, ok := s.FindTexture(name); ok {
			s.ReadTexture(id, framegraph.OffsetCurrent)
		}
	}

	// Declare a read dependency on every light's shadow map so the
	// frame graph orders this pass after shadow/pass.go's draw and
	// inserts the LDSTarget->LShaderRead transition; the map itself is
	// sampled in-shader through the bindless texture index carried on
	// Light.ShadowIndex, which also doubles as the per-light instance's
	// ScopePerLight scope index (shadow.AllocateSlots assigns both from
	// the same counter).
	if u.scn != nil {
		u.scn.Lights.Each(func(_ scene.Handle, l *scene.Light) {
			if l.ShadowIndex == scene.InvalidShadowIndex {
				return
			}
			name := "shadow_map"
			if l.Kind == scene.LightPoint {
				name = "shadow_map_cube"
			}
			if id, ok := s.FindTextureInScope(name, int(l.ShadowIndex)); ok {
				s.ReadTexture(id, framegraph.OffsetCurrent)
			}
		})
	}
}

func (u *directUserData) execute(r *framegraph.PassResources, cmd driver.CmdBuffer, _ any) {
	if u.scn == nil {
		return
	}
	final, err := r.Texture(u.final, framegraph.OffsetCurrent)
	if err != nil {
		return
	}
	fb, err := u.pass.NewFB([]driver.ImageView{final}, u.width, u.height, 1)
	if err != nil {
		return
	}
	defer fb.Destroy()

	cmd.BeginPass(u.pass, fb, []driver.ClearValue{{}})
	cmd.SetViewport([]driver.Viewport{{Width: float32(u.width), Height: float32(u.height), Zfar: 1}})
	cmd.SetScissor([]driver.Scissor{{Width: u.width, Height: u.height}})

	var lightIdx uint32
	u.scn.Lights.Each(func(h scene.Handle, l *scene.Light) {
		pipe := u.pipelineFor(l.Kind)
		if pipe == nil {
			lightIdx++
			return
		}
		cmd.SetPipeline(pipe)

		switch l.Kind {
		case scene.LightPoint:
			var buf [PointPushConstSize]byte
			binary.LittleEndian.PutUint32(buf[0:4], lightIdx)
			binary.LittleEndian.PutUint32(buf[4:8], l.ShadowIndex)
			putVec3(buf[8:20], l.Position)
			binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(l.Radius))
			cmd.SetPushConst(driver.SVertex|driver.SFragment, 0, buf[:])
			cmd.Draw(pointVolumeVerts, 1, 0, 0)

		case scene.LightSpot:
			var buf [SpotPushConstSize]byte
			binary.LittleEndian.PutUint32(buf[0:4], lightIdx)
			binary.LittleEndian.PutUint32(buf[4:8], l.ShadowIndex)
			putVec3(buf[8:20], l.Position)
			binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(l.Radius))
			putVec3(buf[24:36], l.Direction)
			binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(float32(math.Cos(float64(l.ConeOuter)))))
			cmd.SetPushConst(driver.SVertex|driver.SFragment, 0, buf[:])
			cmd.Draw(spotVolumeVerts, 1, 0, 0)

		default: // directional: still the fullscreen-triangle trick
			var buf [DirectionalPushConstSize]byte
			binary.LittleEndian.PutUint32(buf[0:4], lightIdx)
			binary.LittleEndian.PutUint32(buf[4:8], l.ShadowIndex)
			cmd.SetPushConst(driver.SFragment, 0, buf[:])
			cmd.Draw(3, 1, 0, 0)
		}
		lightIdx++
	})

	cmd.EndPass()
}

// putVec3 writes v as three little-endian float32s.
func putVec3(dst []byte, v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(v[2]))
}

func (u *directUserData) pipelineFor(kind scene.LightKind) driver.Pipeline {
	switch kind {
	case scene.LightPoint:
		return u.pipes.Point
	case scene.LightSpot:
		return u.pipes.Spot
	case scene.LightDirectional:
		return u.pipes.Directional
	default:
		return nil
	}
}
