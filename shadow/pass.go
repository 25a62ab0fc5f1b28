package shadow

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vexrender/core/bindless"
	"github.com/vexrender/core/config"
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/framegraph"
	"github.com/vexrender/core/scene"
)

// passUserData is the closure state one slot's cull+draw pass pair
// needs at Execute time. slot/kind never change without a topology
// recompile (shadow.AllocateSlots hands out slots in encounter
// order), but data is a pointer into the frame graph's
// cache-lifetime slotData map: shadow.RefreshData overwrites *data
// every frame, including frames that reuse a cached graph and so
// never run Setup again, keeping view/projection/position current for
// lights that move without changing the shadow-slot topology.
// drawCmds/drawCount/target are filled in by Setup and read back by
// Execute.
type passUserData struct {
	slot int
	kind scene.LightKind
	data *Data

	mgr  *bindless.Manager
	pipe driver.Pipeline
	pass driver.RenderPass

	drawCmds, drawCount, target framegraph.ResourceId
}

// RegisterPasses appends one cull-compute + depth-draw pass pair per
// active shadow slot to decls, scoped ScopePerLight so the frame graph
// instantiates exactly len(assigns) copies. pipe/pass are shared,
// already-built pipeline state for every slot (depth-only draws don't
// vary per slot beyond the push-constant index). The returned map
// holds one *Data per slot, the same pointers passUserData.data holds;
// callers keep it for the lifetime of the compiled graph and pass it
// to RefreshData every frame to keep light transforms current.
func RegisterPasses(decls *[]framegraph.PassDecl, assigns []Assignment, mgr *bindless.Manager, pipe driver.Pipeline, pass driver.RenderPass) map[int]*Data {
	slotData := make(map[int]*Data, len(assigns))
	for _, a := range assigns {
		d := a.Data
		slotData[a.Slot] = &d
		ud := &passUserData{slot: a.Slot, kind: a.Kind, data: &d, mgr: mgr, pipe: pipe, pass: pass}

		*decls = append(*decls, framegraph.PassDecl{
			Name:     "shadow_cull",
			Scope:    framegraph.ScopePerLight,
			Queue:    framegraph.QueueCompute,
			Setup:    setupCull,
			Execute:  executeCull,
			UserData: ud,
			Enabled:  true,
		})
		*decls = append(*decls, framegraph.PassDecl{
			Name:     "shadow_draw",
			Scope:    framegraph.ScopePerLight,
			Queue:    framegraph.QueueGraphics,
			Setup:    setupDraw,
			Execute:  executeDraw,
			UserData: ud,
			Enabled:  true,
		})
	}
	return slotData
}

func setupCull(s *framegraph.PassSetup, userData any) {
	ud := userData.(*passUserData)
	drawCmds := s.CreateBuffer("shadow_draw_commands", framegraph.BufferDesc{
		Size:  int64(config.MaxShadowMaps) * 4096,
		Usage: driver.UShaderWrite | driver.UIndirectData,
	})
	drawCount := s.CreateBuffer("shadow_draw_count", framegraph.BufferDesc{
		Size:  16,
		Usage: driver.UShaderWrite | driver.UIndirectData,
	})
	s.WriteBuffer(drawCmds, framegraph.OffsetCurrent)
	s.WriteBuffer(drawCount, framegraph.OffsetCurrent)
	ud.drawCmds, ud.drawCount = drawCmds, drawCount
}

func executeCull(_ *framegraph.PassResources, cmd driver.CmdBuffer, userData any) {
	ud := userData.(*passUserData)
	idx := uint32(ud.slot)
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], idx)
	cmd.SetPushConst(driver.SCompute, 0, buf[:])
	cmd.Dispatch(64, 1, 1)
}

func setupDraw(s *framegraph.PassSetup, userData any) {
	ud := userData.(*passUserData)
	drawCmds, ok := s.FindBuffer("shadow_draw_commands")
	if ok {
		s.ReadBuffer(drawCmds, framegraph.OffsetCurrent)
	}
	drawCount, ok := s.FindBuffer("shadow_draw_count")
	if ok {
		s.ReadBuffer(drawCount, framegraph.OffsetCurrent)
	}
	ud.drawCmds, ud.drawCount = drawCmds, drawCount

	var extent = int(config.ShadowMapSize)
	desc := framegraph.TextureDesc{
		Extent: driver.Dim3D{Width: extent, Height: extent, Depth: 1},
		Format: driver.D32f,
		Levels: 1,
		Usage:  driver.URenderTarget | driver.UShaderSample,
	}

	var target framegraph.ResourceId
	if ud.kind == scene.LightPoint {
		// Point lights shadow a sphere of directions, so their slot
		// gets a six-layer cube target instead of a single 2D plane;
		// executeDraw renders each face as its own depth pass.
		target = s.CreateTextureCube("shadow_map_cube", desc)
	} else {
		target = s.CreateTexture("shadow_map", desc)
	}
	s.WriteTexture(target, framegraph.OffsetCurrent)
	ud.target = target
}

func executeDraw(r *framegraph.PassResources, cmd driver.CmdBuffer, userData any) {
	ud := userData.(*passUserData)
	if ud.kind == scene.LightPoint {
		executePointFaces(r, cmd, ud)
		return
	}

	view, err := r.Texture(ud.target, framegraph.OffsetCurrent)
	if err != nil {
		return
	}
	fb, err := ud.pass.NewFB([]driver.ImageView{view}, config.ShadowMapSize, config.ShadowMapSize, 1)
	if err != nil {
		return
	}
	defer fb.Destroy()

	cmd.BeginPass(ud.pass, fb, []driver.ClearValue{{Depth: 1}})
	cmd.SetPipeline(ud.pipe)
	cmd.SetViewport([]driver.Viewport{{Width: config.ShadowMapSize, Height: config.ShadowMapSize, Zfar: 1}})
	cmd.SetScissor([]driver.Scissor{{Width: config.ShadowMapSize, Height: config.ShadowMapSize}})

	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(ud.slot))
	binary.LittleEndian.PutUint32(buf[4:8], 0)
	cmd.SetPushConst(driver.SVertex|driver.SFragment, 0, buf[:])

	drawCmds, err1 := r.Buffer(ud.drawCmds, framegraph.OffsetCurrent)
	drawCount, err2 := r.Buffer(ud.drawCount, framegraph.OffsetCurrent)
	if err1 == nil && err2 == nil {
		cmd.DrawIndexedIndirect(drawCmds, 0, drawCount, 0, config.MaxShadowMaps, 20)
	}
	cmd.EndPass()
}

// executePointFaces renders a point light's cube shadow map as six
// individual depth passes, one per face, each with its own view matrix
// pushed as a constant alongside the slot/face index; this module's
// driver abstraction has no geometry-shader stage to replicate a single
// draw across all six layers in hardware.
func executePointFaces(r *framegraph.PassResources, cmd driver.CmdBuffer, ud *passUserData) {
	img, err := r.Image(ud.target, framegraph.OffsetCurrent)
	if err != nil {
		return
	}
	drawCmds, err1 := r.Buffer(ud.drawCmds, framegraph.OffsetCurrent)
	drawCount, err2 := r.Buffer(ud.drawCount, framegraph.OffsetCurrent)
	if err1 != nil || err2 != nil {
		return
	}

	extent := int(config.ShadowMapSize)
	faces := PointFaceViews(ud.data.Position)

	for face, view := range faces {
		faceView, err := img.NewView(driver.IView2D, face, 1, 0, 1)
		if err != nil {
			continue
		}
		fb, err := ud.pass.NewFB([]driver.ImageView{faceView}, extent, extent, 1)
		if err != nil {
			faceView.Destroy()
			continue
		}

		cmd.BeginPass(ud.pass, fb, []driver.ClearValue{{Depth: 1}})
		cmd.SetPipeline(ud.pipe)
		cmd.SetViewport([]driver.Viewport{{Width: config.ShadowMapSize, Height: config.ShadowMapSize, Zfar: 1}})
		cmd.SetScissor([]driver.Scissor{{Width: config.ShadowMapSize, Height: config.ShadowMapSize}})

		var buf [72]byte
		binary.LittleEndian.PutUint32(buf[0:4], uint32(ud.slot))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(face))
		putMat4(buf[8:72], ud.data.Proj.Mul4(view))
		cmd.SetPushConst(driver.SVertex|driver.SFragment, 0, buf[:])

		cmd.DrawIndexedIndirect(drawCmds, 0, drawCount, 0, config.MaxShadowMaps, 20)
		cmd.EndPass()

		fb.Destroy()
		faceView.Destroy()
	}
}

// putMat4 writes m in column-major order as 16 little-endian float32s.
func putMat4(dst []byte, m mgl32.Mat4) {
	for i, f := range m {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], math.Float32bits(f))
	}
}
