package driver

// Destroyer is implemented by types that hold external (non-GC) memory
// and must be explicitly released.
type Destroyer interface {
	Destroy()
}

// Sync is a mask of pipeline synchronization scopes.
type Sync int

const (
	SVertexInput Sync = 1 << iota
	SVertexShading
	SFragmentShading
	SComputeShading
	SColorOutput
	SDSOutput
	SDraw
	SCopy
	SAll
	SNone Sync = 0
)

// Access is a mask of memory access scopes.
type Access int

const (
	AVertexBufRead Access = 1 << iota
	AIndexBufRead
	AIndirectRead
	AColorRead
	AColorWrite
	ADSRead
	ADSWrite
	ACopyRead
	ACopyWrite
	AShaderRead
	AShaderWrite
	AAnyRead
	AAnyWrite
	ANone Access = 0
)

// Layout is a GPU image layout.
type Layout int

const (
	LUndefined Layout = iota
	LCommon
	LColorTarget
	LDSTarget
	LDSReadOnly
	LCopySrc
	LCopyDst
	LShaderRead
	LPresent
)

// Barrier is a synchronization barrier with no layout transition.
type Barrier struct {
	SyncBefore, SyncAfter     Sync
	AccessBefore, AccessAfter Access
}

// Transition is a Barrier that additionally carries an image layout
// transition on a specific view.
type Transition struct {
	Barrier
	LayoutBefore, LayoutAfter Layout
	IView                     ImageView
}

// LoadOp is an attachment load operation.
type LoadOp int

const (
	LDontCare LoadOp = iota
	LClear
	LLoad
)

// StoreOp is an attachment store operation.
type StoreOp int

const (
	SDontCare StoreOp = iota
	SStore
)

// Attachment describes one render target slot of a RenderPass.
type Attachment struct {
	Format  PixelFmt
	Samples int
	Load    [2]LoadOp  // [color/depth, stencil]
	Store   [2]StoreOp
}

// Subpass indexes a Subpass's attachments into the RenderPass' attachment
// list; DS of -1 means no depth/stencil target.
type Subpass struct {
	Color []int
	DS    int
	Wait  bool
}

// RenderPass is a compiled attachment/subpass layout.
type RenderPass interface {
	Destroyer

	// NewFB creates a framebuffer; one view per attachment.
	NewFB(iv []ImageView, width, height, layers int) (Framebuf, error)
}

// Framebuf binds concrete image views to a RenderPass' attachments.
type Framebuf interface {
	Destroyer
}

// ClearValue is a color or depth/stencil clear value.
type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}
