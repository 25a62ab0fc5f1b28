package lighting

import (
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/framegraph"
	"github.com/vexrender/core/scene"
)

// forwardUserData is the closure state a single forward (non-deferred)
// bucket pass needs at Execute time: transparency, sprites, wireframe
// and line-strip geometry all draw directly into final_color after the
// deferred passes have resolved it, rather than through the G-buffer.
type forwardUserData struct {
	width, height int
	maxDrawables  int
	bucket        scene.Bucket
	pipe          driver.Pipeline
	pass          driver.RenderPass

	final               framegraph.ResourceId
	depth               framegraph.ResourceId
	hasDepth            bool
	drawCmds, drawCount framegraph.ResourceId
	hasDraws            bool
}

// RegisterForwardPass appends one forward-draw pass for bucket to
// decls, scoped ScopePerCamera. pass must have been created with a
// LOAD/STORE color attachment over final_color and, when depth testing
// is wanted (transparency, sprites), a read-only depth attachment;
// wireframe and line-strip geometry typically disable depth test.
func RegisterForwardPass(decls *[]framegraph.PassDecl, width, height, maxDrawables int, bucket scene.Bucket, pipe driver.Pipeline, pass driver.RenderPass) {
	ud := &forwardUserData{width: width, height: height, maxDrawables: maxDrawables, bucket: bucket, pipe: pipe, pass: pass}
	*decls = append(*decls, framegraph.PassDecl{
		Name:     "forward_" + bucketName(bucket),
		Scope:    framegraph.ScopePerCamera,
		Queue:    framegraph.QueueGraphics,
		Setup:    ud.setup,
		Execute:  ud.execute,
		UserData: ud,
		Enabled:  true,
	})
}

func (u *forwardUserData) setup(s *framegraph.PassSetup, _ any) {
	final, ok := s.FindTexture(AttrFinal)
	if !ok {
		return
	}
	s.WriteTexture(final, framegraph.OffsetCurrent)
	u.final = final

	if depth, ok := s.FindTexture(AttrDepth); ok {
		s.ReadTexture(depth, framegraph.OffsetCurrent)
		u.depth, u.hasDepth = depth, true
	}

	cmdsName := bucketName(u.bucket) + "_draw_commands"
	countName := bucketName(u.bucket) + "_draw_count"
	if cmds, ok := s.FindBuffer(cmdsName); ok {
		if count, ok := s.FindBuffer(countName); ok {
			s.ReadBuffer(cmds, framegraph.OffsetCurrent)
			s.ReadBuffer(count, framegraph.OffsetCurrent)
			u.drawCmds, u.drawCount, u.hasDraws = cmds, count, true
		}
	}
}

func (u *forwardUserData) execute(r *framegraph.PassResources, cmd driver.CmdBuffer, _ any) {
	final, err := r.Texture(u.final, framegraph.OffsetCurrent)
	if err != nil {
		return
	}
	views := []driver.ImageView{final}
	if u.hasDepth {
		if depth, err := r.Texture(u.depth, framegraph.OffsetCurrent); err == nil {
			views = append(views, depth)
		}
	}
	fb, err := u.pass.NewFB(views, u.width, u.height, 1)
	if err != nil {
		return
	}
	defer fb.Destroy()

	cmd.BeginPass(u.pass, fb, make([]driver.ClearValue, len(views)))
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

func bucketName(b scene.Bucket) string {
	switch b {
	case scene.BucketOpaque:
		return "opaque"
	case scene.BucketTransparent:
		return "transparent"
	case scene.BucketWireframe:
		return "wireframe"
	case scene.BucketRandomColor:
		return "random_color"
	case scene.BucketLineStrip:
		return "line_strip"
	case scene.BucketSprite:
		return "sprite"
	default:
		return "bucket"
	}
}

// presentUserData is the closure state the post-process/present pass
// needs: a single fullscreen pass that tonemaps final_color into the
// acquired swapchain image, registered as an external resource by the
// caller (the renderer owns the swapchain and knows which image index
// is live this frame).
type presentUserData struct {
	width, height int
	pipe          driver.Pipeline
	pass          driver.RenderPass

	final         framegraph.ResourceId
	swapchain     framegraph.ResourceId
	swapchainView any
}

// RegisterPresentPass appends the tonemap+composite pass that resolves
// final_color onto swapchainView, the ImageView of this frame's
// acquired swapchain backbuffer. It must be the last color-writing pass
// before RegisterUIOverlayPass.
func RegisterPresentPass(decls *[]framegraph.PassDecl, width, height int, swapchainView any, pipe driver.Pipeline, pass driver.RenderPass) {
	ud := &presentUserData{width: width, height: height, pipe: pipe, pass: pass, swapchainView: swapchainView}
	*decls = append(*decls, framegraph.PassDecl{
		Name:     "present_composite",
		Scope:    framegraph.ScopePerCamera,
		Queue:    framegraph.QueueGraphics,
		Setup:    ud.setup,
		Execute:  ud.execute,
		UserData: ud,
		Enabled:  true,
	})
}

func (u *presentUserData) setup(s *framegraph.PassSetup, _ any) {
	if final, ok := s.FindTexture(AttrFinal); ok {
		s.ReadTexture(final, framegraph.OffsetCurrent)
		u.final = final
	}
	u.swapchain = s.RegisterExternalTexture("swapchain_image", u.swapchainView, true)
	s.WriteTexture(u.swapchain, framegraph.OffsetCurrent)
}

func (u *presentUserData) execute(r *framegraph.PassResources, cmd driver.CmdBuffer, _ any) {
	target, err := r.Texture(u.swapchain, framegraph.OffsetCurrent)
	if err != nil {
		return
	}
	fb, err := u.pass.NewFB([]driver.ImageView{target}, u.width, u.height, 1)
	if err != nil {
		return
	}
	defer fb.Destroy()

	cmd.BeginPass(u.pass, fb, []driver.ClearValue{{}})
	cmd.SetPipeline(u.pipe)
	cmd.SetViewport([]driver.Viewport{{Width: float32(u.width), Height: float32(u.height), Zfar: 1}})
	cmd.SetScissor([]driver.Scissor{{Width: u.width, Height: u.height}})
	cmd.Draw(3, 1, 0, 0)
	cmd.EndPass()
}

// uiUserData is the closure state the UI overlay pass needs: it draws
// last, over the composited swapchain image, with loadOp LOAD so the
// tonemapped frame underneath survives.
type uiUserData struct {
	width, height int
	maxDrawables  int
	pipe          driver.Pipeline
	pass          driver.RenderPass

	swapchain           framegraph.ResourceId
	drawCmds, drawCount framegraph.ResourceId
	hasDraws            bool
}

// RegisterUIOverlayPass appends the UI draw pass to decls. It must run
// after RegisterPresentPass in the declaration order passed to
// framegraph.Compile, since pass execution order follows the graph's
// topological sort of the write-after-write dependency on
// swapchain_image.
func RegisterUIOverlayPass(decls *[]framegraph.PassDecl, width, height, maxDrawables int, pipe driver.Pipeline, pass driver.RenderPass) {
	ud := &uiUserData{width: width, height: height, maxDrawables: maxDrawables, pipe: pipe, pass: pass}
	*decls = append(*decls, framegraph.PassDecl{
		Name:     "ui_overlay",
		Scope:    framegraph.ScopePerCamera,
		Queue:    framegraph.QueueGraphics,
		Setup:    ud.setup,
		Execute:  ud.execute,
		UserData: ud,
		Enabled:  true,
	})
}

func (u *uiUserData) setup(s *framegraph.PassSetup, _ any) {
	swap, ok := s.FindTexture("swapchain_image")
	if !ok {
		return
	}
	s.WriteTexture(swap, framegraph.OffsetCurrent)
	u.swapchain = swap

	if cmds, ok := s.FindBuffer("ui_draw_commands"); ok {
		if count, ok := s.FindBuffer("ui_draw_count"); ok {
			s.ReadBuffer(cmds, framegraph.OffsetCurrent)
			s.ReadBuffer(count, framegraph.OffsetCurrent)
			u.drawCmds, u.drawCount, u.hasDraws = cmds, count, true
		}
	}
}

func (u *uiUserData) execute(r *framegraph.PassResources, cmd driver.CmdBuffer, _ any) {
	target, err := r.Texture(u.swapchain, framegraph.OffsetCurrent)
	if err != nil {
		return
	}
	fb, err := u.pass.NewFB([]driver.ImageView{target}, u.width, u.height, 1)
	if err != nil {
		return
	}
	defer fb.Destroy()

	cmd.BeginPass(u.pass, fb, []driver.ClearValue{{}})
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
