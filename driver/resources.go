package driver

// Usage is a mask of valid uses for a Buffer or Image.
type Usage int

// Usage flags.
const (
	UShaderRead Usage = 1 << iota
	UShaderWrite
	UShaderConst  // Buffer only.
	UShaderSample // Image only.
	UVertexData   // Buffer only.
	UIndexData    // Buffer only.
	UIndirectData // Buffer only: source of indirect draw/dispatch params.
	URenderTarget // Image only.
	UCopySrc
	UCopyDst
	UGeneric Usage = 1<<iota - 1
)

// Buffer is a fixed-size GPU buffer. A larger buffer requires creating a
// new one and copying data explicitly — buffers never grow in place.
type Buffer interface {
	Destroyer

	// Visible reports whether the buffer is host-visible.
	Visible() bool

	// Bytes returns a slice of length Cap backed by the buffer's
	// host-visible memory, or nil if the buffer is device-local.
	Bytes() []byte

	// Cap returns the buffer's capacity in bytes.
	Cap() int64
}

// PixelFmt describes the format of a pixel.
type PixelFmt int

// Pixel formats.
const (
	RGBA8un PixelFmt = iota
	RGBA8n
	RGBA8sRGB
	BGRA8un
	BGRA8sRGB
	RG8un
	R8un
	RGBA16f
	RG16f
	R16f
	RGBA32f
	RG32f
	R32f
	D16un
	D32f
	S8ui
	D24unS8ui
	D32fS8ui
)

// Dim3D is a three-dimensional size.
type Dim3D struct{ Width, Height, Depth int }

// Off3D is a three-dimensional offset.
type Off3D struct{ X, Y, Z int }

// Image is a GPU image. The CPU never accesses image memory directly;
// uploads go through a staging Buffer and a copy command.
type Image interface {
	Destroyer

	// NewView creates a typed view into the image's storage. All views
	// of an image must be destroyed before the image itself is.
	NewView(typ ViewType, layer, layers, level, levels int) (ImageView, error)
}

// ViewType is the type of an ImageView.
type ViewType int

const (
	IView1D ViewType = iota
	IView2D
	IView3D
	IViewCube
	IView1DArray
	IView2DArray
	IViewCubeArray
	IView2DMS
	IView2DMSArray
)

// ImageView is a typed view of an Image resource.
type ImageView interface {
	Destroyer
}

// Filter is a sampler filter kind.
type Filter int

const (
	FNearest Filter = iota
	FLinear
	FNoMipmap // mip filter only: pin to level 0.
)

// AddrMode is a sampler address mode.
type AddrMode int

const (
	AWrap AddrMode = iota
	AMirror
	AClamp
)

// Sampler is an image sampler.
type Sampler interface {
	Destroyer
}

// Sampling describes sampler state.
type Sampling struct {
	Min, Mag, Mipmap Filter
	AddrU, AddrV     AddrMode
	MaxAniso         int
	Cmp              CmpFunc
	MinLOD, MaxLOD   float32
	// Reduction selects MIN/MAX texel reduction instead of averaging,
	// used by the hierarchical-Z reduction sampler (visibility package).
	Reduction ReductionMode
}

// ReductionMode selects how a sampler combines texels within a footprint.
type ReductionMode int

const (
	RAverage ReductionMode = iota
	RMin
	RMax
)
