package driver

// ShaderCode is a compiled shader binary.
type ShaderCode interface {
	Destroyer
}

// ShaderFunc names an entry point within a ShaderCode.
type ShaderFunc struct {
	Code ShaderCode
	Name string
}

// Stage is a mask of programmable shader stages.
type Stage int

const (
	SVertex Stage = 1 << iota
	SFragment
	SCompute
)

// DescType is the type of a shader-visible descriptor.
type DescType int

const (
	DBuffer   DescType = iota // read/write storage buffer
	DImage                    // read/write storage image
	DConstant                 // constant/uniform buffer
	DTexture                  // sampled texture
	DSampler                  // texture sampler
)

// Descriptor describes one binding slot of a DescHeap. Len > 1 with
// Variable set declares an update-after-bind variable-count array,
// used by the bindless texture/sampler descriptor.
type Descriptor struct {
	Type     DescType
	Stages   Stage
	Nr       int
	Len      int
	Variable bool
}

// DescHeap holds storage for one or more copies of a set of Descriptors.
type DescHeap interface {
	Destroyer

	// New allocates storage for n copies; New(0) frees all storage.
	New(n int) error

	SetBuffer(cpy, nr, start int, buf []Buffer, off, size []int64)
	SetImage(cpy, nr, start int, iv []ImageView)
	SetSampler(cpy, nr, start int, splr []Sampler)

	// Count returns the number of heap copies.
	Count() int
}

// DescTable binds a number of DescHeaps to the shader stages of a
// Pipeline.
type DescTable interface {
	Destroyer
}

// VertexFmt is the format of one vertex input component.
type VertexFmt int

const (
	Int8 VertexFmt = iota
	Int8x2
	Int8x3
	Int8x4
	Int32
	Int32x2
	Int32x3
	Int32x4
	UInt32
	Float32
	Float32x2
	Float32x3
	Float32x4
)

// VertexIn describes one vertex buffer binding. Interleaved inputs within
// a single binding are not supported — each VertexIn is its own buffer.
type VertexIn struct {
	Format VertexFmt
	Stride int
	Nr     int
	Name   string
}

// Topology selects how vertex data assembles into primitives.
type Topology int

const (
	TPoint Topology = iota
	TLine
	TLnStrip
	TTriangle
	TTriStrip
)

// IndexFmt is the width of index buffer elements, in bytes.
type IndexFmt int

const (
	Index16 IndexFmt = 2
	Index32 IndexFmt = 4
)

// Viewport is a normalized device viewport.
type Viewport struct{ X, Y, Width, Height, Znear, Zfar float32 }

// Scissor is a scissor rectangle in framebuffer pixels.
type Scissor struct{ X, Y, Width, Height int }

// CullMode selects which triangle facing direction is discarded.
type CullMode int

const (
	CNone CullMode = iota
	CFront
	CBack
)

// FillMode selects triangle rasterization fill.
type FillMode int

const (
	FFill FillMode = iota
	FLines
)

// RasterState is the fixed-function rasterizer configuration.
type RasterState struct {
	Clockwise bool
	Cull      CullMode
	Fill      FillMode
	DepthBias bool
	BiasValue float32
	BiasSlope float32
}

// CmpFunc is a comparison function used by depth, stencil and sampler
// reduction-compare tests.
type CmpFunc int

const (
	CNever CmpFunc = iota
	CLess
	CEqual
	CLessEqual
	CGreater
	CNotEqual
	CGreaterEqual
	CAlways
)

// DSState is the depth/stencil test configuration, baked into a
// pipeline at creation. A pass that needs a different DepthCmp or
// RasterState.Cull per draw (light volumes varying by kind, for
// instance) creates one pipeline per variant rather than changing
// state mid-pass.
type DSState struct {
	DepthTest  bool
	DepthWrite bool
	DepthCmp   CmpFunc
}

// BlendOp is a color/alpha blend operation.
type BlendOp int

const (
	BAdd BlendOp = iota
	BSubtract
	BMin
	BMax
)

// BlendFac is a blend factor.
type BlendFac int

const (
	BZero BlendFac = iota
	BOne
	BSrcAlpha
	BInvSrcAlpha
	BDstAlpha
	BInvDstAlpha
)

// ColorMask is a write mask over color channels.
type ColorMask int

const (
	CRed ColorMask = 1 << iota
	CGreen
	CBlue
	CAlpha
	CAll ColorMask = 1<<iota - 1
)

// ColorBlend is one render target's blend parameters.
type ColorBlend struct {
	Blend     bool
	WriteMask ColorMask
	Op        [2]BlendOp  // [color, alpha]
	SrcFac    [2]BlendFac
	DstFac    [2]BlendFac
}

// BlendState is the color blend state of a graphics pipeline.
type BlendState struct {
	IndependentBlend bool
	Color            []ColorBlend
}

// PushConstRange declares a push-constant byte range visible to the
// given stages. Bindless passes use this to carry the handful of u32
// indices a shader needs to reach G-buffer/shadow/material data.
type PushConstRange struct {
	Stages Stage
	Size   int
}

// GraphState is the full fixed+programmable state of a graphics
// pipeline.
type GraphState struct {
	VertFunc  ShaderFunc
	FragFunc  ShaderFunc
	Desc      DescTable
	PushConst PushConstRange
	Input     []VertexIn
	Topology  Topology
	Raster    RasterState
	Samples   int
	DS        DSState
	Blend     BlendState
	Pass      RenderPass
	Subpass   int
}

// CompState is the state of a compute pipeline: one shader plus its
// descriptor table.
type CompState struct {
	Func      ShaderFunc
	Desc      DescTable
	PushConst PushConstRange
}

// Pipeline is a compiled graphics or compute pipeline.
type Pipeline interface {
	Destroyer
}

// Limits describes implementation limits.
type Limits struct {
	MaxImage2D      int
	MaxImageCube    int
	MaxLayers       int
	MaxDescHeaps    int
	MaxDTexture     int
	MaxDSampler     int
	MaxDBufferRange int64
	MaxColorTargets int
	MaxViewports    int
	MaxDispatch     [3]int
}
