package driver

// GPU is the main entry point of a driver implementation: it creates
// every other resource type and executes committed command buffers.
type GPU interface {
	// Driver returns the Driver that owns this GPU.
	Driver() Driver

	// Commit submits a batch of command buffers for execution. Wait
	// operations recorded in a buffer apply to the whole batch, so
	// order is meaningful. ch receives the result once every command
	// in the batch has completed; cb cannot be re-recorded until then.
	Commit(cb []CmdBuffer, ch chan<- error)

	NewCmdBuffer() (CmdBuffer, error)
	NewRenderPass(att []Attachment, sub []Subpass) (RenderPass, error)
	NewShaderCode(data []byte) (ShaderCode, error)
	NewDescHeap(ds []Descriptor) (DescHeap, error)
	NewDescTable(dh []DescHeap) (DescTable, error)

	// NewPipeline creates a pipeline. state must be *GraphState or
	// *CompState.
	NewPipeline(state any) (Pipeline, error)

	NewBuffer(size int64, visible bool, usg Usage) (Buffer, error)
	NewImage(pf PixelFmt, size Dim3D, layers, levels, samples int, usg Usage) (Image, error)
	NewSampler(spln *Sampling) (Sampler, error)

	// Limits returns implementation limits, immutable for the GPU's
	// lifetime.
	Limits() Limits
}

// DrawIndexedIndirectCmd mirrors the GPU-visible indirect draw parameter
// block written by visibility/shadow cull compute passes.
type DrawIndexedIndirectCmd struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}

// DispatchIndirectCmd mirrors a GPU-visible indirect dispatch parameter
// block.
type DispatchIndirectCmd struct {
	GroupCountX, GroupCountY, GroupCountZ uint32
}

// CmdBuffer records GPU commands. Recording is split into logical blocks:
//
//	render:  BeginPass, Set*, Draw*, [NextSubpass, Set*, Draw*, ...], EndPass
//	compute: BeginWork, Set*, Dispatch*, EndWork
//	copy:    BeginBlit, Copy*/Fill, EndBlit
//
// Begin* calls must not nest and must be matched with the corresponding
// End* before another Begin* or the final End. Call End, then GPU.Commit.
type CmdBuffer interface {
	Destroyer

	Begin() error

	BeginPass(pass RenderPass, fb Framebuf, clear []ClearValue)
	NextSubpass()
	EndPass()

	// BeginWork begins compute work. If wait, it only starts once all
	// previously recorded commands in this buffer complete.
	BeginWork(wait bool)
	EndWork()

	// BeginBlit begins data transfer, with the same wait semantics as
	// BeginWork.
	BeginBlit(wait bool)
	EndBlit()

	SetPipeline(pl Pipeline)
	SetViewport(vp []Viewport)
	SetScissor(sciss []Scissor)
	SetStencilRef(value uint32)
	SetVertexBuf(start int, buf []Buffer, off []int64)
	SetIndexBuf(format IndexFmt, buf Buffer, off int64)
	SetDescTableGraph(table DescTable, start int, heapCopy []int)
	SetDescTableComp(table DescTable, start int, heapCopy []int)

	// SetPushConst uploads push-constant bytes visible to stages.
	SetPushConst(stages Stage, offset int, data []byte)

	Draw(vertCount, instCount, baseVert, baseInst int)
	DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int)

	// DrawIndexedIndirect issues count indexed draws whose parameter
	// blocks are read from buf at off, spaced stride bytes apart. count
	// itself may be sourced from countBuf/countOff rather than fixed on the CPU.
	DrawIndexedIndirect(buf Buffer, off int64, countBuf Buffer, countOff int64, maxCount int, stride int64)

	Dispatch(grpCountX, grpCountY, grpCountZ int)
	DispatchIndirect(buf Buffer, off int64)

	CopyBuffer(param *BufferCopy)
	CopyImage(param *ImageCopy)
	CopyBufToImg(param *BufImgCopy)
	CopyImgToBuf(param *BufImgCopy)
	Fill(buf Buffer, off int64, value byte, size int64)

	Barrier(b []Barrier)
	Transition(t []Transition)

	End() error
	Reset() error
}

// BufferCopy describes a buffer-to-buffer copy.
type BufferCopy struct {
	From, To         Buffer
	FromOff, ToOff   int64
	Size             int64
}

// ImageCopy describes an image-to-image copy.
type ImageCopy struct {
	From, To                   Image
	FromOff, ToOff             Off3D
	FromLayer, FromLevel       int
	ToLayer, ToLevel           int
	Size                       Dim3D
	Layers                     int
}

// BufImgCopy describes a copy between a buffer and an image.
type BufImgCopy struct {
	Buf       Buffer
	BufOff    int64
	Stride    [2]int64 // row length, image height, in pixels
	Img       Image
	ImgOff    Off3D
	Layer     int
	Level     int
	Size      Dim3D
	DepthCopy bool
}
