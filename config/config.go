// Package config defines the renderer's external configuration surface.
// There is no CLI/persisted-state layer; the embedder constructs a
// RenderConfig in memory and passes it to renderer.NewOnscreen or
// renderer.NewOffscreen.
package config

// Wire constants.
const (
	MaxShadowMaps      = 16
	ShadowMapSize      = 512
	InvalidShadowIndex    = 0xFFFFFFFF
	DefaultFramesInFlight = 2
	MaxDepthMipsLevel     = 16
)

// Features toggles optional passes. A package-level Config struct with
// defaults applied through a constructor keeps every renderer constructor call
// explicit about what it enables instead of depending on globals.
type Features struct {
	OcclusionCulling bool
	DepthPyramid     bool
	AsyncCompute     bool
	IBL              bool
}

// RenderConfig configures a renderer.Renderer at construction time.
type RenderConfig struct {
	Width, Height int

	// FramesInFlight is FRAMES_IN_FLIGHT. Defaulted to
	// DefaultFramesInFlight when zero.
	FramesInFlight int

	Features Features

	// EnvironmentMapPath and BRDFLUTPath locate the IBL assets loaded
	// by the ambient pass; these are plain file paths handed to an
	// external loader, which itself lives outside this module.
	EnvironmentMapPath string
	BRDFLUTPath        string

	MaxDrawables int
	MaxLights    int
	MaxMaterials int
	MaxMeshes    int
}

// DefaultRenderConfig returns a RenderConfig with sane defaults applied.
func DefaultRenderConfig(width, height int) RenderConfig {
	return RenderConfig{
		Width:          width,
		Height:         height,
		FramesInFlight: DefaultFramesInFlight,
		Features: Features{
			OcclusionCulling: true,
			DepthPyramid:     true,
			AsyncCompute:     false,
			IBL:              true,
		},
		MaxDrawables: 4096,
		MaxLights:    256,
		MaxMaterials: 1024,
		MaxMeshes:    4096,
	}
}

// Normalize fills in zero-valued fields with their defaults. Callers
// that build a RenderConfig by hand (rather than via
// DefaultRenderConfig) should call this before use.
func (c *RenderConfig) Normalize() {
	if c.FramesInFlight <= 0 {
		c.FramesInFlight = DefaultFramesInFlight
	}
	if c.MaxDrawables <= 0 {
		c.MaxDrawables = 4096
	}
	if c.MaxLights <= 0 {
		c.MaxLights = 256
	}
	if c.MaxMaterials <= 0 {
		c.MaxMaterials = 1024
	}
	if c.MaxMeshes <= 0 {
		c.MaxMeshes = 4096
	}
}
