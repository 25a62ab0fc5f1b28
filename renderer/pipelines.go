package renderer

import (
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/lighting"
)

// pipelineSet holds every driver.RenderPass and driver.Pipeline a
// Renderer's registered frame-graph passes draw with. It is built once,
// in Renderer.init. Framebuf extents aren't baked into the pipelines —
// only viewport/scissor state, which passes set per-Execute from
// width/height.
type pipelineSet struct {
	gbufferPass  driver.RenderPass
	gbufferPipe  driver.Pipeline
	shadowPass   driver.RenderPass
	shadowPipe   driver.Pipeline
	cullPipe     driver.Pipeline
	pyramidPipe  driver.Pipeline
	pyramidSplr  driver.Sampler
	ambientPass  driver.RenderPass
	ambientPipe  driver.Pipeline
	directPass   driver.RenderPass
	directPipes  lighting.DirectPipelines
	forwardPass  driver.RenderPass
	forwardPipes map[string]driver.Pipeline
	presentPass  driver.RenderPass
	presentPipe  driver.Pipeline
	uiPass       driver.RenderPass
	uiPipe       driver.Pipeline

	shaders shaderSet
}

func buildPipelineSet(gpu driver.GPU, shaders shaderSet) (*pipelineSet, error) {
	p := &pipelineSet{shaders: shaders, forwardPipes: make(map[string]driver.Pipeline)}

	var err error
	if err = p.buildGBuffer(gpu); err != nil {
		return nil, err
	}
	if err = p.buildShadow(gpu); err != nil {
		return nil, err
	}
	if err = p.buildCull(gpu); err != nil {
		return nil, err
	}
	if err = p.buildPyramid(gpu); err != nil {
		return nil, err
	}
	if err = p.buildAmbient(gpu); err != nil {
		return nil, err
	}
	if err = p.buildDirect(gpu); err != nil {
		return nil, err
	}
	if err = p.buildForward(gpu); err != nil {
		return nil, err
	}
	if err = p.buildPresent(gpu); err != nil {
		return nil, err
	}
	if err = p.buildUI(gpu); err != nil {
		return nil, err
	}
	return p, nil
}

func fullscreenBlend() driver.BlendState {
	return driver.BlendState{Color: []driver.ColorBlend{{WriteMask: driver.CAll}}}
}

func additiveBlend() driver.BlendState {
	return driver.BlendState{Color: []driver.ColorBlend{{
		Blend:     true,
		WriteMask: driver.CAll,
		Op:        [2]driver.BlendOp{driver.BAdd, driver.BAdd},
		SrcFac:    [2]driver.BlendFac{driver.BOne, driver.BOne},
		DstFac:    [2]driver.BlendFac{driver.BOne, driver.BOne},
	}}}
}

func (p *pipelineSet) buildGBuffer(gpu driver.GPU) error {
	att := []driver.Attachment{
		{Format: driver.RGBA32f, Samples: 1, Load: [2]driver.LoadOp{driver.LClear}, Store: [2]driver.StoreOp{driver.SStore}},
		{Format: driver.RGBA8un, Samples: 1, Load: [2]driver.LoadOp{driver.LClear}, Store: [2]driver.StoreOp{driver.SStore}},
		{Format: driver.RGBA8un, Samples: 1, Load: [2]driver.LoadOp{driver.LClear}, Store: [2]driver.StoreOp{driver.SStore}},
		{Format: driver.RGBA8un, Samples: 1, Load: [2]driver.LoadOp{driver.LClear}, Store: [2]driver.StoreOp{driver.SStore}},
		{Format: driver.RGBA8un, Samples: 1, Load: [2]driver.LoadOp{driver.LClear}, Store: [2]driver.StoreOp{driver.SStore}},
		{Format: driver.D32f, Samples: 1, Load: [2]driver.LoadOp{driver.LClear}, Store: [2]driver.StoreOp{driver.SStore}},
	}
	sub := []driver.Subpass{{Color: []int{0, 1, 2, 3, 4}, DS: 5, Wait: true}}
	pass, err := gpu.NewRenderPass(att, sub)
	if err != nil {
		return err
	}
	pipe, err := gpu.NewPipeline(&driver.GraphState{
		VertFunc:  p.shaders.fn("gbuffer.vert"),
		FragFunc:  p.shaders.fn("gbuffer.frag"),
		Topology:  driver.TTriangle,
		Raster:    driver.RasterState{Cull: driver.CBack},
		Samples:   1,
		DS:        driver.DSState{DepthTest: true, DepthWrite: true, DepthCmp: driver.CLess},
		Blend:     driver.BlendState{Color: []driver.ColorBlend{{WriteMask: driver.CAll}, {WriteMask: driver.CAll}, {WriteMask: driver.CAll}, {WriteMask: driver.CAll}, {WriteMask: driver.CAll}}},
		Pass:      pass,
		PushConst: driver.PushConstRange{Stages: driver.SVertex | driver.SFragment, Size: 16},
	})
	if err != nil {
		pass.Destroy()
		return err
	}
	p.gbufferPass, p.gbufferPipe = pass, pipe
	return nil
}

func (p *pipelineSet) buildShadow(gpu driver.GPU) error {
	att := []driver.Attachment{
		{Format: driver.D32f, Samples: 1, Load: [2]driver.LoadOp{driver.LClear}, Store: [2]driver.StoreOp{driver.SStore}},
	}
	sub := []driver.Subpass{{DS: 0, Wait: true}}
	pass, err := gpu.NewRenderPass(att, sub)
	if err != nil {
		return err
	}
	pipe, err := gpu.NewPipeline(&driver.GraphState{
		VertFunc:  p.shaders.fn("shadow.vert"),
		FragFunc:  p.shaders.fn("shadow.frag"),
		Topology:  driver.TTriangle,
		Raster:    driver.RasterState{Cull: driver.CFront, DepthBias: true, BiasValue: 1.25, BiasSlope: 1.75},
		Samples:   1,
		DS:        driver.DSState{DepthTest: true, DepthWrite: true, DepthCmp: driver.CLess},
		Pass:      pass,
		PushConst: driver.PushConstRange{Stages: driver.SVertex | driver.SFragment, Size: 72}, // slot, face, face view-projection
	})
	if err != nil {
		pass.Destroy()
		return err
	}
	p.shadowPass, p.shadowPipe = pass, pipe
	return nil
}

func (p *pipelineSet) buildCull(gpu driver.GPU) error {
	pipe, err := gpu.NewPipeline(&driver.CompState{
		Func:      p.shaders.fn("visibility_cull.comp"),
		PushConst: driver.PushConstRange{Stages: driver.SCompute, Size: 8},
	})
	if err != nil {
		return err
	}
	p.cullPipe = pipe
	return nil
}

func (p *pipelineSet) buildPyramid(gpu driver.GPU) error {
	pipe, err := gpu.NewPipeline(&driver.CompState{
		Func:      p.shaders.fn("depth_pyramid.comp"),
		PushConst: driver.PushConstRange{Stages: driver.SCompute, Size: 8},
	})
	if err != nil {
		return err
	}
	splr, err := gpu.NewSampler(&driver.Sampling{
		Min: driver.FLinear, Mag: driver.FLinear, Mipmap: driver.FNearest,
		AddrU: driver.AClamp, AddrV: driver.AClamp,
		Reduction: driver.RMax,
	})
	if err != nil {
		pipe.Destroy()
		return err
	}
	p.pyramidPipe, p.pyramidSplr = pipe, splr
	return nil
}

func (p *pipelineSet) buildAmbient(gpu driver.GPU) error {
	att := []driver.Attachment{
		{Format: driver.BGRA8sRGB, Samples: 1, Load: [2]driver.LoadOp{driver.LClear}, Store: [2]driver.StoreOp{driver.SStore}},
	}
	sub := []driver.Subpass{{Color: []int{0}, DS: -1, Wait: true}}
	pass, err := gpu.NewRenderPass(att, sub)
	if err != nil {
		return err
	}
	pipe, err := gpu.NewPipeline(&driver.GraphState{
		VertFunc:  p.shaders.fn("fullscreen.vert"),
		FragFunc:  p.shaders.fn("ambient.frag"),
		Topology:  driver.TTriangle,
		Raster:    driver.RasterState{Cull: driver.CNone},
		Samples:   1,
		Blend:     fullscreenBlend(),
		Pass:      pass,
		PushConst: driver.PushConstRange{Stages: driver.SFragment, Size: 8},
	})
	if err != nil {
		pass.Destroy()
		return err
	}
	p.ambientPass, p.ambientPipe = pass, pipe
	return nil
}

// buildDirect creates one shared RenderPass, plus one pipeline per
// light kind. Point and spot draw a procedural volume mesh (a sphere,
// a cone) generated from gl_VertexIndex in light_volume.vert and
// transformed by the per-draw push constant; since the camera can end
// up inside a point light's sphere, that pipeline culls front faces so
// the back of the volume still rasterizes. A spot's cone is assumed
// viewed from outside, so it culls back faces like ordinary geometry.
// Directional has no volume — it still covers the full screen via the
// shared fullscreen triangle trick. Every kind blends ONE,ONE
// additively atop the ambient term already in final_color.
func (p *pipelineSet) buildDirect(gpu driver.GPU) error {
	att := []driver.Attachment{
		{Format: driver.BGRA8sRGB, Samples: 1, Load: [2]driver.LoadOp{driver.LLoad}, Store: [2]driver.StoreOp{driver.SStore}},
	}
	sub := []driver.Subpass{{Color: []int{0}, DS: -1, Wait: true}}
	pass, err := gpu.NewRenderPass(att, sub)
	if err != nil {
		return err
	}

	mkVolume := func(frag string, cull driver.CullMode, pushSize int) (driver.Pipeline, error) {
		return gpu.NewPipeline(&driver.GraphState{
			VertFunc:  p.shaders.fn("light_volume.vert"),
			FragFunc:  p.shaders.fn(frag),
			Topology:  driver.TTriangle,
			Raster:    driver.RasterState{Cull: cull},
			Samples:   1,
			Blend:     additiveBlend(),
			Pass:      pass,
			PushConst: driver.PushConstRange{Stages: driver.SVertex | driver.SFragment, Size: pushSize},
		})
	}

	point, err := mkVolume("direct_point.frag", driver.CFront, lighting.PointPushConstSize)
	if err != nil {
		pass.Destroy()
		return err
	}
	spot, err := mkVolume("direct_spot.frag", driver.CBack, lighting.SpotPushConstSize)
	if err != nil {
		point.Destroy()
		pass.Destroy()
		return err
	}
	dir, err := gpu.NewPipeline(&driver.GraphState{
		VertFunc:  p.shaders.fn("fullscreen.vert"),
		FragFunc:  p.shaders.fn("direct_directional.frag"),
		Topology:  driver.TTriangle,
		Raster:    driver.RasterState{Cull: driver.CNone},
		Samples:   1,
		Blend:     additiveBlend(),
		Pass:      pass,
		PushConst: driver.PushConstRange{Stages: driver.SFragment, Size: lighting.DirectionalPushConstSize},
	})
	if err != nil {
		point.Destroy()
		spot.Destroy()
		pass.Destroy()
		return err
	}

	p.directPass = pass
	p.directPipes = lighting.DirectPipelines{Point: point, Spot: spot, Directional: dir}
	return nil
}

func (p *pipelineSet) buildForward(gpu driver.GPU) error {
	att := []driver.Attachment{
		{Format: driver.BGRA8sRGB, Samples: 1, Load: [2]driver.LoadOp{driver.LLoad}, Store: [2]driver.StoreOp{driver.SStore}},
		{Format: driver.D32f, Samples: 1, Load: [2]driver.LoadOp{driver.LLoad}, Store: [2]driver.StoreOp{driver.SDontCare}},
	}
	sub := []driver.Subpass{{Color: []int{0}, DS: 1, Wait: true}}
	pass, err := gpu.NewRenderPass(att, sub)
	if err != nil {
		return err
	}
	p.forwardPass = pass

	type variant struct {
		key             string
		vert, frag      string
		topology        driver.Topology
		blend, depthTst bool
	}
	variants := []variant{
		{"opaque", "forward_opaque.vert", "forward_opaque.frag", driver.TTriangle, false, true},
		{"transparent", "forward_transparent.vert", "forward_transparent.frag", driver.TTriangle, true, true},
		{"wireframe", "forward_wireframe.vert", "forward_wireframe.frag", driver.TTriangle, false, false},
		{"random_color", "forward_random_color.vert", "forward_random_color.frag", driver.TTriangle, false, true},
		{"line_strip", "forward_line_strip.vert", "forward_line_strip.frag", driver.TLnStrip, false, false},
		{"sprite", "forward_sprite.vert", "forward_sprite.frag", driver.TTriStrip, true, false},
	}
	for _, v := range variants {
		blend := fullscreenBlend()
		if v.blend {
			blend = driver.BlendState{Color: []driver.ColorBlend{{
				Blend: true, WriteMask: driver.CAll,
				Op:     [2]driver.BlendOp{driver.BAdd, driver.BAdd},
				SrcFac: [2]driver.BlendFac{driver.BSrcAlpha, driver.BOne},
				DstFac: [2]driver.BlendFac{driver.BInvSrcAlpha, driver.BZero},
			}}}
		}
		pipe, err := gpu.NewPipeline(&driver.GraphState{
			VertFunc:  p.shaders.fn(v.vert),
			FragFunc:  p.shaders.fn(v.frag),
			Topology:  v.topology,
			Raster:    driver.RasterState{Cull: driver.CBack},
			Samples:   1,
			DS:        driver.DSState{DepthTest: v.depthTst, DepthWrite: !v.blend && v.depthTst, DepthCmp: driver.CLessEqual},
			Blend:     blend,
			Pass:      pass,
			PushConst: driver.PushConstRange{Stages: driver.SVertex | driver.SFragment, Size: 16},
		})
		if err != nil {
			for _, d := range p.forwardPipes {
				d.Destroy()
			}
			pass.Destroy()
			return err
		}
		p.forwardPipes[v.key] = pipe
	}
	return nil
}

func (p *pipelineSet) buildPresent(gpu driver.GPU) error {
	att := []driver.Attachment{
		{Format: driver.BGRA8sRGB, Samples: 1, Load: [2]driver.LoadOp{driver.LDontCare}, Store: [2]driver.StoreOp{driver.SStore}},
	}
	sub := []driver.Subpass{{Color: []int{0}, DS: -1, Wait: true}}
	pass, err := gpu.NewRenderPass(att, sub)
	if err != nil {
		return err
	}
	pipe, err := gpu.NewPipeline(&driver.GraphState{
		VertFunc: p.shaders.fn("fullscreen.vert"),
		FragFunc: p.shaders.fn("present.frag"),
		Topology: driver.TTriangle,
		Raster:   driver.RasterState{Cull: driver.CNone},
		Samples:  1,
		Blend:    fullscreenBlend(),
		Pass:     pass,
	})
	if err != nil {
		pass.Destroy()
		return err
	}
	p.presentPass, p.presentPipe = pass, pipe
	return nil
}

func (p *pipelineSet) buildUI(gpu driver.GPU) error {
	att := []driver.Attachment{
		{Format: driver.BGRA8sRGB, Samples: 1, Load: [2]driver.LoadOp{driver.LLoad}, Store: [2]driver.StoreOp{driver.SStore}},
	}
	sub := []driver.Subpass{{Color: []int{0}, DS: -1, Wait: true}}
	pass, err := gpu.NewRenderPass(att, sub)
	if err != nil {
		return err
	}
	blend := driver.BlendState{Color: []driver.ColorBlend{{
		Blend: true, WriteMask: driver.CAll,
		Op:     [2]driver.BlendOp{driver.BAdd, driver.BAdd},
		SrcFac: [2]driver.BlendFac{driver.BSrcAlpha, driver.BOne},
		DstFac: [2]driver.BlendFac{driver.BInvSrcAlpha, driver.BZero},
	}}}
	pipe, err := gpu.NewPipeline(&driver.GraphState{
		VertFunc:  p.shaders.fn("ui_overlay.vert"),
		FragFunc:  p.shaders.fn("ui_overlay.frag"),
		Topology:  driver.TTriangle,
		Raster:    driver.RasterState{Cull: driver.CNone},
		Samples:   1,
		Blend:     blend,
		Pass:      pass,
		PushConst: driver.PushConstRange{Stages: driver.SVertex | driver.SFragment, Size: 16},
	})
	if err != nil {
		pass.Destroy()
		return err
	}
	p.uiPass, p.uiPipe = pass, pipe
	return nil
}

func (p *pipelineSet) destroy() {
	if p == nil {
		return
	}
	destroyables := []interface{ Destroy() }{
		p.gbufferPipe, p.gbufferPass, p.shadowPipe, p.shadowPass,
		p.cullPipe, p.pyramidPipe, p.pyramidSplr,
		p.ambientPipe, p.ambientPass,
		p.directPipes.Point, p.directPipes.Spot, p.directPipes.Directional, p.directPass,
		p.presentPipe, p.presentPass, p.uiPipe, p.uiPass, p.forwardPass,
	}
	for _, d := range destroyables {
		if d != nil {
			d.Destroy()
		}
	}
	for _, pipe := range p.forwardPipes {
		if pipe != nil {
			pipe.Destroy()
		}
	}
	p.shaders.destroy()
}
