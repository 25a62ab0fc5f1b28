package lighting

import (
	"encoding/binary"
	"math"

	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/framegraph"
)

// ambientUserData is the closure state the ambient/IBL fullscreen pass
// needs at Execute time.
type ambientUserData struct {
	width, height int
	pipe          driver.Pipeline
	pass          driver.RenderPass
	environmentMaxLOD float32
	iblIntensity       float32

	gbuffer map[string]framegraph.ResourceId
	final   framegraph.ResourceId
}

// RegisterAmbientPass appends the ambient/IBL pass to decls, scoped
// ScopePerCamera. It must run after RegisterGBufferPass so the G-buffer
// textures it reads already exist in the graph.
func RegisterAmbientPass(decls *[]framegraph.PassDecl, width, height int, environmentMaxLOD, iblIntensity float32, pipe driver.Pipeline, pass driver.RenderPass) {
	ud := &ambientUserData{
		width: width, height: height,
		environmentMaxLOD: environmentMaxLOD, iblIntensity: iblIntensity,
		pipe: pipe, pass: pass,
		gbuffer: make(map[string]framegraph.ResourceId),
	}
	*decls = append(*decls, framegraph.PassDecl{
		Name:     "ambient_ibl",
		Scope:    framegraph.ScopePerCamera,
		Queue:    framegraph.QueueGraphics,
		Setup:    ud.setup,
		Execute:  ud.execute,
		UserData: ud,
		Enabled:  true,
	})
}

func (u *ambientUserData) setup(s *framegraph.PassSetup, _ any) {
	for _, name := range []string{AttrPosition, AttrNormal, AttrAlbedo, AttrMetalRough, AttrEmissive} {
		if id, ok := s.FindTexture(name); ok {
			s.ReadTexture(id, framegraph.OffsetCurrent)
			u.gbuffer[name] = id
		}
	}
	final, ok := s.FindTexture(AttrFinal)
	if !ok {
		final = s.CreateTexture(AttrFinal, framegraph.TextureDesc{
			Extent: driver.Dim3D{Width: u.width, Height: u.height, Depth: 1},
			Format: driver.BGRA8sRGB,
			Levels: 1,
			Usage:  driver.URenderTarget | driver.UShaderSample,
		})
	}
	s.WriteTexture(final, framegraph.OffsetCurrent)
	u.final = final
}

func (u *ambientUserData) execute(r *framegraph.PassResources, cmd driver.CmdBuffer, _ any) {
	final, err := r.Texture(u.final, framegraph.OffsetCurrent)
	if err != nil {
		return
	}
	fb, err := u.pass.NewFB([]driver.ImageView{final}, u.width, u.height, 1)
	if err != nil {
		return
	}
	defer fb.Destroy()

	cmd.BeginPass(u.pass, fb, []driver.ClearValue{{Color: [4]float32{0, 0, 0, 1}}})
	cmd.SetPipeline(u.pipe)
	cmd.SetViewport([]driver.Viewport{{Width: float32(u.width), Height: float32(u.height), Zfar: 1}})
	cmd.SetScissor([]driver.Scissor{{Width: u.width, Height: u.height}})

	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(u.environmentMaxLOD))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(u.iblIntensity))
	cmd.SetPushConst(driver.SFragment, 0, buf[:])

	// Single fullscreen triangle: 3 vertices, no vertex buffer bound.
	cmd.Draw(3, 1, 0, 0)
	cmd.EndPass()
}
