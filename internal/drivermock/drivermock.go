// Package drivermock implements an in-memory driver.GPU used only by
// this module's tests: it backs every resource with plain Go memory and
// executes commands synchronously, so packages built on top of driver
// (bindless, framegraph, visibility, shadow, lighting) can be tested
// without a real GPU or window system. No concrete hardware backend
// ships in this module (see DESIGN.md), so this fake is the only
// driver.GPU implementation available to tests.
package drivermock

import (
	"errors"

	"github.com/vexrender/core/driver"
)

// GPU is a synchronous, host-memory-backed driver.GPU.
type GPU struct{}

// New returns a ready-to-use mock GPU.
func New() *GPU { return &GPU{} }

func (g *GPU) Driver() driver.Driver { return nil }

func (g *GPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	// Commands already executed synchronously as they were recorded;
	// Commit only needs to signal completion.
	if ch != nil {
		ch <- nil
	}
}

func (g *GPU) NewCmdBuffer() (driver.CmdBuffer, error) { return &cmdBuffer{}, nil }

func (g *GPU) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	return &renderPass{att: att, sub: sub}, nil
}

func (g *GPU) NewShaderCode(data []byte) (driver.ShaderCode, error) { return &destroyable{}, nil }

func (g *GPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	return &descHeap{descs: ds}, nil
}

func (g *GPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) { return &destroyable{}, nil }

func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) { return &destroyable{}, nil }

func (g *GPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	if size < 0 {
		return nil, errors.New("drivermock: negative buffer size")
	}
	return &buffer{data: make([]byte, size), visible: visible}, nil
}

func (g *GPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	return &image{format: pf, size: size, layers: layers, levels: levels}, nil
}

func (g *GPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) { return &destroyable{}, nil }

func (g *GPU) Limits() driver.Limits {
	return driver.Limits{
		MaxImage2D:   16384,
		MaxImageCube: 16384,
		MaxLayers:    2048,
		MaxDispatch:  [3]int{65535, 65535, 65535},
	}
}

// NewSwapchain implements driver.Presenter, letting tests exercise the
// swapchain package's acquire/present/recreate protocol without a real
// window system.
func (g *GPU) NewSwapchain(surf driver.SurfaceProvider, imageCount int) (driver.Swapchain, error) {
	if imageCount <= 0 {
		return nil, errors.New("drivermock: non-positive swapchain image count")
	}
	sc := &swapchain{surf: surf, imageCount: imageCount}
	sc.build()
	return sc, nil
}

// swapchain is a fixed-size ring of host-memory-backed images. Next
// always advances the ring and never blocks; SetOutOfDate forces the
// next Next/Present call to return driver.ErrSwapchain, simulating a
// window resize so swapchain.Chain's recreate path can be tested.
type swapchain struct {
	surf       driver.SurfaceProvider
	imageCount int
	views      []driver.ImageView
	next       int
	outOfDate  bool
}

func (s *swapchain) build() {
	s.views = make([]driver.ImageView, s.imageCount)
	for i := range s.views {
		s.views[i] = &destroyable{}
	}
}

// SetOutOfDate marks the swapchain so the next Next/Present call
// returns driver.ErrSwapchain, as a real driver would after a surface
// resize.
func (s *swapchain) SetOutOfDate() { s.outOfDate = true }

func (s *swapchain) Destroy() {}

func (s *swapchain) Views() []driver.ImageView { return s.views }

func (s *swapchain) Next(cb driver.CmdBuffer) (int, error) {
	if s.outOfDate {
		return 0, driver.ErrSwapchain
	}
	idx := s.next
	s.next = (s.next + 1) % s.imageCount
	return idx, nil
}

func (s *swapchain) Present(index int, cb driver.CmdBuffer) error {
	if s.outOfDate {
		return driver.ErrSwapchain
	}
	return nil
}

func (s *swapchain) Recreate() error {
	s.outOfDate = false
	s.build()
	return nil
}

func (s *swapchain) Format() driver.PixelFmt { return driver.BGRA8sRGB }

type destroyable struct{}

func (*destroyable) Destroy() {}

type buffer struct {
	data    []byte
	visible bool
}

func (b *buffer) Destroy()        {}
func (b *buffer) Visible() bool   { return b.visible }
func (b *buffer) Bytes() []byte {
	if !b.visible {
		return nil
	}
	return b.data
}
func (b *buffer) Cap() int64 { return int64(len(b.data)) }

type image struct {
	format driver.PixelFmt
	size   driver.Dim3D
	layers int
	levels int
}

func (*image) Destroy() {}
func (im *image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	return &destroyable{}, nil
}

type renderPass struct {
	att []driver.Attachment
	sub []driver.Subpass
}

func (*renderPass) Destroy() {}
func (*renderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	return &destroyable{}, nil
}

type descHeap struct {
	descs []driver.Descriptor
	count int
}

func (*descHeap) Destroy() {}
func (d *descHeap) New(n int) error {
	d.count = n
	return nil
}
func (d *descHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {}
func (d *descHeap) SetImage(cpy, nr, start int, iv []driver.ImageView)                    {}
func (d *descHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler)                  {}
func (d *descHeap) Count() int                                                            { return d.count }

// cmdBuffer executes copy/fill commands immediately against host
// memory, which is all the bindless/framegraph unit tests need; draw
// and dispatch commands are no-ops and are not recorded.
type cmdBuffer struct{}

func (*cmdBuffer) Destroy()          {}
func (*cmdBuffer) Begin() error      { return nil }
func (*cmdBuffer) End() error        { return nil }
func (*cmdBuffer) Reset() error      { return nil }
func (*cmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {}
func (*cmdBuffer) NextSubpass()                                {}
func (*cmdBuffer) EndPass()                                    {}
func (*cmdBuffer) BeginWork(wait bool)                         {}
func (*cmdBuffer) EndWork()                                    {}
func (*cmdBuffer) BeginBlit(wait bool)                         {}
func (*cmdBuffer) EndBlit()                                    {}
func (*cmdBuffer) SetPipeline(pl driver.Pipeline)              {}
func (*cmdBuffer) SetViewport(vp []driver.Viewport)            {}
func (*cmdBuffer) SetScissor(sciss []driver.Scissor)           {}
func (*cmdBuffer) SetStencilRef(value uint32)                  {}
func (*cmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {}
func (*cmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {}
func (*cmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {}
func (*cmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int)  {}
func (*cmdBuffer) SetPushConst(stages driver.Stage, offset int, data []byte)           {}
func (*cmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int)                   {}
func (*cmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int)      {}
func (*cmdBuffer) DrawIndexedIndirect(buf driver.Buffer, off int64, countBuf driver.Buffer, countOff int64, maxCount int, stride int64) {
}
func (*cmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int)        {}
func (*cmdBuffer) DispatchIndirect(buf driver.Buffer, off int64)       {}
func (*cmdBuffer) Barrier(b []driver.Barrier)                          {}
func (*cmdBuffer) Transition(t []driver.Transition)                    {}

func (*cmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	from, ok := param.From.(*buffer)
	if !ok {
		return
	}
	to, ok := param.To.(*buffer)
	if !ok {
		return
	}
	copy(to.data[param.ToOff:param.ToOff+param.Size], from.data[param.FromOff:param.FromOff+param.Size])
}

func (*cmdBuffer) CopyImage(param *driver.ImageCopy)       {}
func (*cmdBuffer) CopyBufToImg(param *driver.BufImgCopy)   {}
func (*cmdBuffer) CopyImgToBuf(param *driver.BufImgCopy)   {}
func (*cmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	b, ok := buf.(*buffer)
	if !ok {
		return
	}
	for i := off; i < off+size; i++ {
		b.data[i] = value
	}
}
