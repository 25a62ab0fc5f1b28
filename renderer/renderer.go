// Package renderer assembles the frame graph, bindless manager,
// shadow, visibility and lighting subsystems into the one entry point
// an embedder calls once per frame: Render.
package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vexrender/core/bindless"
	"github.com/vexrender/core/config"
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/framegraph"
	"github.com/vexrender/core/lighting"
	"github.com/vexrender/core/scene"
	"github.com/vexrender/core/shadow"
	"github.com/vexrender/core/swapchain"
	"github.com/vexrender/core/visibility"
)

const rendPrefix = "renderer: "

func newRendErr(reason string) error { return errors.New(rendPrefix + reason) }

// maxShadowSlotBindings is the bindless buffer capacity reserved for
// per-slot shadow view/projection data; one entry per config.MaxShadowMaps slot.
const maxShadowSlotBindings = config.MaxShadowMaps

// Renderer executes a cached framegraph.Graph on every Render call and
// recompiles it only when the frame's topology signature changes.
// Onscreen and Offscreen embed a Renderer; call NewOnscreen or
// NewOffscreen to obtain a valid one.
type Renderer struct {
	gpu driver.GPU
	cfg config.RenderConfig

	mgr   *bindless.Manager
	pipes *pipelineSet

	// cb holds FramesInFlight command buffers, reused round-robin by
	// frame index. pending[i] carries cb[i]'s outstanding Commit result
	// (nil once drained); a slot cannot be re-recorded until its prior
	// submission completes.
	cb      []driver.CmdBuffer
	pending []chan error

	// graph is the last compiled frame graph, reused across Render calls
	// as long as topoSig still matches: frame_index alone must never
	// trigger a recompile, only a change in pass/resource topology does
	// (camera/light counts, enabled-feature set, shadow slot
	// assignments, target extents).
	graph    *framegraph.Graph
	topoSig  string
	hasGraph bool

	// shadowData holds the shadow pass's per-slot view/projection/
	// position state for the currently cached graph, keyed by slot.
	// Lights move every frame regardless of whether the graph itself
	// is recompiled, so renderOnce refreshes it through
	// shadow.RefreshData on every call, not just on a cache miss.
	shadowData map[int]*shadow.Data

	frame int
}

func (r *Renderer) init(gpu driver.GPU, cfg config.RenderConfig, load ShaderLoader) (err error) {
	defer func() {
		if err != nil {
			r.free()
		}
	}()

	cfg.Normalize()
	r.gpu, r.cfg = gpu, cfg

	framegraph.Bind(gpu)
	bindless.Bind(gpu)

	r.mgr, err = bindless.New(
		cfg.FramesInFlight,
		cfg.MaxDrawables, cfg.MaxMeshes, cfg.MaxMaterials, cfg.MaxLights,
		cfg.MaxDrawables, cfg.MaxDrawables, cfg.MaxDrawables,
		16, maxShadowSlotBindings,
	)
	if err != nil {
		return err
	}

	shaders, err := loadShaders(gpu, load)
	if err != nil {
		return err
	}
	r.pipes, err = buildPipelineSet(gpu, shaders)
	if err != nil {
		return err
	}

	r.cb = make([]driver.CmdBuffer, cfg.FramesInFlight)
	r.pending = make([]chan error, cfg.FramesInFlight)
	for i := range r.cb {
		r.cb[i], err = gpu.NewCmdBuffer()
		if err != nil {
			return err
		}
	}
	return nil
}

// drainPending blocks until every command buffer slot's outstanding
// submission (if any) has completed, including slots other than the
// one about to be recorded. A topology change that discards the
// cached graph's physical resources must drain first: with
// FramesInFlight > 1, another slot's commands may still be in flight
// on the GPU and reference those same resources.
func (r *Renderer) drainPending() {
	for i, p := range r.pending {
		if p != nil {
			<-p
			r.pending[i] = nil
		}
	}
}

func (r *Renderer) free() {
	if r == nil {
		return
	}
	r.drainPending()
	for _, cb := range r.cb {
		if cb != nil {
			cb.Destroy()
		}
	}
	r.pipes.destroy()
	r.mgr.Destroy()
	r.graph.Destroy()
	*r = Renderer{}
}

// acquireSlot returns the index and command buffer for the current
// frame, blocking until that slot's previous submission (if any) has
// completed.
func (r *Renderer) acquireSlot() (int, driver.CmdBuffer) {
	slot := r.frame % len(r.cb)
	if p := r.pending[slot]; p != nil {
		<-p
		r.pending[slot] = nil
	}
	return slot, r.cb[slot]
}

func bucketKey(b scene.Bucket) string {
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

var allBuckets = []scene.Bucket{
	scene.BucketOpaque, scene.BucketTransparent, scene.BucketWireframe,
	scene.BucketRandomColor, scene.BucketLineStrip, scene.BucketSprite,
}

// buildPassDecls registers every subsystem's frame-graph passes, in
// dependency order: shadow slots must be allocated (and the resulting
// draw-order-independent cull/draw pairs declared) before the direct
// light pass's Setup runs, since it reads Light.ShadowIndex to look up
// each light's shadow map resource.
func (r *Renderer) buildPassDecls(scn *scene.Scene, assigns []shadow.Assignment, swapchainView any) ([]framegraph.PassDecl, map[int]*shadow.Data) {
	var decls []framegraph.PassDecl

	slotData := shadow.RegisterPasses(&decls, assigns, r.mgr, r.pipes.shadowPipe, r.pipes.shadowPass)

	if r.cfg.Features.OcclusionCulling {
		visibility.RegisterCullPasses(&decls, r.cfg.MaxDrawables, r.pipes.cullPipe)
		if r.cfg.Features.DepthPyramid {
			visibility.RegisterPyramidPass(&decls, r.cfg.Width, r.cfg.Height, r.pipes.pyramidPipe, r.pipes.pyramidSplr)
		}
	}

	lighting.RegisterGBufferPass(&decls, r.cfg.Width, r.cfg.Height, r.cfg.MaxDrawables, r.pipes.gbufferPipe, r.pipes.gbufferPass)

	if r.cfg.Features.IBL {
		lighting.RegisterAmbientPass(&decls, r.cfg.Width, r.cfg.Height, 8, 1, r.pipes.ambientPipe, r.pipes.ambientPass)
	}

	lighting.RegisterDirectLightPass(&decls, r.cfg.Width, r.cfg.Height, r.pipes.directPipes, r.pipes.directPass, scn)

	for _, b := range allBuckets {
		if b == scene.BucketOpaque {
			continue // opaque draws through the deferred G-buffer path
		}
		pipe := r.pipes.forwardPipes[bucketKey(b)]
		lighting.RegisterForwardPass(&decls, r.cfg.Width, r.cfg.Height, r.cfg.MaxDrawables, b, pipe, r.pipes.forwardPass)
	}

	lighting.RegisterPresentPass(&decls, r.cfg.Width, r.cfg.Height, swapchainView, r.pipes.presentPipe, r.pipes.presentPass)
	lighting.RegisterUIOverlayPass(&decls, r.cfg.Width, r.cfg.Height, r.cfg.MaxDrawables, r.pipes.uiPipe, r.pipes.uiPass)

	return decls, slotData
}

// renderOnce records and commits one frame's graph into cb, which the
// caller has already acquired via acquireSlot (and, for an Onscreen
// Renderer, already passed to swapchain.Chain.Acquire). It does not
// wait for the GPU to finish: acquireSlot waits for this commit the
// next time the slot comes up for reuse, and discards the commit's
// error result without reporting it.
func (r *Renderer) renderOnce(cb driver.CmdBuffer, slot int, scn *scene.Scene, numCameras int, swapchainView any) error {
	assigns, indices := shadow.AllocateSlots(scn)
	scn.Lights.Each(func(h scene.Handle, l *scene.Light) {
		if idx, ok := indices[h]; ok {
			l.ShadowIndex = idx
		}
	})

	if err := r.mgr.FlushBindless(); err != nil {
		return err
	}

	sig := r.topoSignature(scn, assigns, numCameras, swapchainView != nil)
	if !r.hasGraph || sig != r.topoSig {
		decls, slotData := r.buildPassDecls(scn, assigns, swapchainView)
		g, err := framegraph.Compile(decls, framegraph.InstanceContext{
			NumCameras:     maxOne(numCameras),
			NumLights:      len(assigns),
			FramesInFlight: r.cfg.FramesInFlight,
		})
		if err != nil {
			return fmt.Errorf("%s%w", rendPrefix, err)
		}
		r.drainPending() // old graph's resources may still be in flight on another slot
		r.graph.Destroy()
		r.graph, r.topoSig, r.hasGraph, r.shadowData = g, sig, true, slotData
	}
	// Lights move every frame even when the shadow-slot topology (and
	// so the cached graph) doesn't change, so this runs unconditionally.
	shadow.RefreshData(r.shadowData, assigns)

	if err := cb.Reset(); err != nil {
		return err
	}
	if err := cb.Begin(); err != nil {
		return err
	}

	ext := framegraph.Externals{}
	if swapchainView != nil {
		ext["swapchain_image"] = swapchainView
	}
	r.graph.Execute(r.frame, cb, ext)

	if err := cb.End(); err != nil {
		return err
	}

	result := make(chan error, 1)
	r.gpu.Commit([]driver.CmdBuffer{cb}, result)
	r.pending[slot] = result
	r.frame++
	return nil
}

// topoSignature summarizes everything that changes a Render call's pass
// and resource topology: a change here is the only thing allowed to
// trigger a framegraph.Compile. frame_index and per-light transform
// data (refreshed through shadow.RefreshData instead) deliberately
// play no part, so a static scene recompiles once and then just calls
// Graph.Execute every frame.
func (r *Renderer) topoSignature(scn *scene.Scene, assigns []shadow.Assignment, numCameras int, hasSwapchain bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scn=%p cam=%d fif=%d w=%d h=%d occ=%t pyr=%t ibl=%t sc=%t|",
		scn, maxOne(numCameras), r.cfg.FramesInFlight, r.cfg.Width, r.cfg.Height,
		r.cfg.Features.OcclusionCulling, r.cfg.Features.DepthPyramid, r.cfg.Features.IBL, hasSwapchain)
	for _, a := range assigns {
		fmt.Fprintf(&b, "%d.%d:%d:%d,", a.Light.Index, a.Light.Gen, a.Slot, a.Kind)
	}
	return b.String()
}

func maxOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Onscreen is a Renderer that presents to a swapchain.Chain.
type Onscreen struct {
	Renderer
	chain *swapchain.Chain
}

// NewOnscreen creates a Renderer that presents frames to surf.
func NewOnscreen(gpu driver.GPU, surf driver.SurfaceProvider, cfg config.RenderConfig, load ShaderLoader) (*Onscreen, error) {
	chain, err := swapchain.New(gpu, surf, cfg.FramesInFlight)
	if err != nil {
		return nil, err
	}
	var r Onscreen
	if err := r.init(gpu, cfg, load); err != nil {
		chain.Destroy()
		return nil, err
	}
	r.chain = chain
	return &r, nil
}

// Render acquires the next swapchain image, renders scn through it
// for numCameras cameras, and presents.
func (r *Onscreen) Render(scn *scene.Scene, numCameras int) error {
	slot, cb := r.acquireSlot()

	idx, view, err := r.chain.Acquire(cb)
	if err != nil {
		return err
	}
	if err := r.renderOnce(cb, slot, scn, numCameras, view); err != nil {
		return err
	}
	return r.chain.Present(idx, cb)
}

// Free invalidates r and releases every driver resource it holds.
func (r *Onscreen) Free() {
	if r == nil {
		return
	}
	r.free()
	r.chain.Destroy()
	r.chain = nil
}

// Offscreen is a Renderer that draws into caller-supplied image views
// instead of a swapchain; the embedder supplies a fresh target view
// each call (a ring of render-to-texture targets, typically).
type Offscreen struct {
	Renderer
}

// NewOffscreen creates a headless Renderer.
func NewOffscreen(gpu driver.GPU, cfg config.RenderConfig, load ShaderLoader) (*Offscreen, error) {
	var r Offscreen
	if err := r.init(gpu, cfg, load); err != nil {
		return nil, err
	}
	return &r, nil
}

// Render renders scn for numCameras cameras into target.
func (r *Offscreen) Render(scn *scene.Scene, numCameras int, target driver.ImageView) error {
	if target == nil {
		return newRendErr("NewOffscreen Render requires a non-nil target ImageView")
	}
	slot, cb := r.acquireSlot()
	return r.renderOnce(cb, slot, scn, numCameras, target)
}

// Free invalidates r and releases every driver resource it holds.
func (r *Offscreen) Free() {
	if r == nil {
		return
	}
	r.free()
}
