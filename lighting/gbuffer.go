// Package lighting implements the deferred shading pipeline: G-buffer
// fill, ambient/IBL, per-light-kind direct lighting, transparency and
// the final post-process/swapchain composite.
package lighting

import (
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/framegraph"
)

// Attachment names every G-buffer channel a camera's passes read and
// write. Declared once so every pass in this package addresses the
// same qualified resource names.
const (
	AttrPosition   = "gbuffer_position"
	AttrNormal     = "gbuffer_normal"
	AttrAlbedo     = "gbuffer_albedo"
	AttrMetalRough = "gbuffer_metal_rough"
	AttrEmissive   = "gbuffer_emissive"
	AttrDepth      = "depth"
	AttrFinal      = "final_color"
)

// drawCommandStride is visibility.DrawCommand's std430 size in bytes.
const drawCommandStride = 20

// gbufferUserData holds the shared graphics pipeline the G-buffer fill
// pass uses; geometry draws come from the opaque bucket's indirect
// draw list produced by visibility.RegisterCullPasses.
type gbufferUserData struct {
	width, height int
	maxDrawables  int
	pipe          driver.Pipeline
	pass          driver.RenderPass

	attachments         map[string]framegraph.ResourceId
	drawCmds, drawCount framegraph.ResourceId
	hasDraws            bool
}

// RegisterGBufferPass appends the G-buffer fill pass to decls, scoped
// ScopePerCamera.
func RegisterGBufferPass(decls *[]framegraph.PassDecl, width, height, maxDrawables int, pipe driver.Pipeline, pass driver.RenderPass) {
	ud := &gbufferUserData{width: width, height: height, maxDrawables: maxDrawables, pipe: pipe, pass: pass, attachments: make(map[string]framegraph.ResourceId)}
	*decls = append(*decls, framegraph.PassDecl{
		Name:     "gbuffer_fill",
		Scope:    framegraph.ScopePerCamera,
		Queue:    framegraph.QueueGraphics,
		Setup:    ud.setup,
		Execute:  ud.execute,
		UserData: ud,
		Enabled:  true,
	})
}

func (u *gbufferUserData) setup(s *framegraph.PassSetup, _ any) {
	create := func(name string, format driver.PixelFmt) framegraph.ResourceId {
		id := s.CreateTexture(name, framegraph.TextureDesc{
			Extent: driver.Dim3D{Width: u.width, Height: u.height, Depth: 1},
			Format: format,
			Levels: 1,
			Usage:  driver.URenderTarget | driver.UShaderSample,
		})
		s.WriteTexture(id, framegraph.OffsetCurrent)
		u.attachments[name] = id
		return id
	}
	create(AttrPosition, driver.RGBA32f)
	create(AttrNormal, driver.RGBA8un)
	create(AttrAlbedo, driver.RGBA8un)
	create(AttrMetalRough, driver.RGBA8un)
	create(AttrEmissive, driver.RGBA8un)
	create(AttrDepth, driver.D32f)

	final := s.CreateTexture(AttrFinal, framegraph.TextureDesc{
		Extent: driver.Dim3D{Width: u.width, Height: u.height, Depth: 1},
		Format: driver.BGRA8sRGB,
		Levels: 1,
		Usage:  driver.URenderTarget | driver.UShaderSample,
	})
	// final_color is only declared here, not written; the ambient pass
	// clears it and is the first to write color into it.
	u.attachments[AttrFinal] = final

	if cmds, ok := s.FindBuffer("opaque_draw_commands"); ok {
		if count, ok := s.FindBuffer("opaque_draw_count"); ok {
			s.ReadBuffer(cmds, framegraph.OffsetCurrent)
			s.ReadBuffer(count, framegraph.OffsetCurrent)
			u.drawCmds, u.drawCount, u.hasDraws = cmds, count, true
		}
	}
}

func (u *gbufferUserData) execute(r *framegraph.PassResources, cmd driver.CmdBuffer, _ any) {
	views := make([]driver.ImageView, 0, len(u.attachments))
	for _, name := range []string{AttrPosition, AttrNormal, AttrAlbedo, AttrMetalRough, AttrEmissive, AttrDepth} {
		v, err := r.Texture(u.attachments[name], framegraph.OffsetCurrent)
		if err != nil {
			return
		}
		views = append(views, v)
	}
	fb, err := u.pass.NewFB(views, u.width, u.height, 1)
	if err != nil {
		return
	}
	defer fb.Destroy()

	clears := make([]driver.ClearValue, len(views))
	clears[len(clears)-1] = driver.ClearValue{Depth: 1}

	cmd.BeginPass(u.pass, fb, clears)
	cmd.SetPipeline(u.pipe)
	cmd.SetViewport([]driver.Viewport{{Width: float32(u.width), Height: float32(u.height), Zfar: 1}})
	cmd.SetScissor([]driver.Scissor{{Width: u.width, Height: u.height}})
	if u.hasDraws {
		if cmds, err := r.Buffer(u.drawCmds, framegraph.OffsetCurrent); err == nil {
			if count, err := r.Buffer(u.drawCount, framegraph.OffsetCurrent); err == nil {
				cmd.DrawIndexedIndirect(cmds, 0, count, 0, u.maxDrawables, drawCommandStride)
			}
		}
	}
	cmd.EndPass()
}
