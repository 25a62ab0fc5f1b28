// Package framegraph implements a declarative pass/resource graph that
// compiles into a barrier-inserted execution schedule. Passes declare
// what they read and write; compile derives dependency edges, culls
// dead passes, allocates physical resources and synthesizes the
// barriers between passes. Every transient resource copy gets its own
// allocation: no two resources share (alias) memory. Nothing here issues GPU commands at
// declaration time — that only happens once per frame, in
// Graph.Execute.
package framegraph

import "github.com/vexrender/core/driver"

// Scope is a pass-instantiation qualifier: it determines how many
// concrete pass instances the compiler produces from one PassDecl.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopePerCamera
	ScopePerLight
)

// Queue selects which hardware queue a pass instance's commands run on.
type Queue int

const (
	QueueGraphics Queue = iota
	QueueCompute
)

// FrameOffset selects which physical copy of a double(or more)-buffered
// resource a read/write targets, relative to the frame currently being
// recorded.
type FrameOffset int

const (
	OffsetPrev    FrameOffset = -1
	OffsetCurrent FrameOffset = 0
	OffsetNext    FrameOffset = 1
)

// ResourceKind is the declared type of a graph resource.
type ResourceKind int

const (
	KindTexture2D ResourceKind = iota
	KindTextureCube
	KindBuffer
)

// ResourceId identifies a declared resource. PassSetup always returns
// Version 0; writes do not bump it, and the compiler itself only uses
// Index.
type ResourceId struct {
	Index   uint32
	Version uint32
}

// TextureDesc describes a transient or external texture resource.
type TextureDesc struct {
	Extent driver.Dim3D
	Format driver.PixelFmt
	Levels int
	Usage  driver.Usage
}

// BufferDesc describes a transient or external buffer resource.
type BufferDesc struct {
	Size  int64
	Usage driver.Usage
}

// PassSetupFunc declares a pass instance's resource usage. userData is
// the opaque context pointer the pass was registered with, replacing
// package-level globals with an explicit per-pass closure value.
type PassSetupFunc func(s *PassSetup, userData any)

// PassExecuteFunc records a pass instance's commands.
type PassExecuteFunc func(r *PassResources, cmd driver.CmdBuffer, userData any)

// PassDecl is the pure-data declaration of one pass.
type PassDecl struct {
	Name     string
	Scope    Scope
	Queue    Queue
	Setup    PassSetupFunc
	Execute  PassExecuteFunc
	UserData any
	Enabled  bool
}

// InstanceContext gives Compile the number of instances to
// create for PerCamera/PerLight-scoped passes and the frame-in-flight
// count used to decide physical copy counts.
type InstanceContext struct {
	NumCameras     int
	NumLights      int
	FramesInFlight int
}
