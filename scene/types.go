// Package scene holds the CPU-side data model that is uploaded into the
// bindless buffers each frame: nodes, meshes, materials, lights and
// cameras, all addressed by generational pool.Handle values.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vexrender/core/internal/pool"
)

// NodeFlags partitions a node into exactly one pipeline bucket plus a
// set of independent modifiers.
type NodeFlags uint32

const (
	FlagVisible NodeFlags = 1 << iota
	FlagMaterialTransparent
	FlagMaterialWireframe
	FlagMaterialRandomColor
	FlagMaterialLineStrip
	FlagSprite
)

// Bucket identifies one of the draw-command buckets the visibility
// pipeline fills.
type Bucket int

const (
	BucketOpaque Bucket = iota
	BucketTransparent
	BucketWireframe
	BucketRandomColor
	BucketLineStrip
	BucketSprite
	bucketCount
)

// BucketOf maps a node's flags to the single bucket it belongs to. The
// switch order matters: a node can carry at most one of these modifier
// flags meaningfully, so the first match wins.
func BucketOf(f NodeFlags) Bucket {
	switch {
	case f&FlagSprite != 0:
		return BucketSprite
	case f&FlagMaterialTransparent != 0:
		return BucketTransparent
	case f&FlagMaterialWireframe != 0:
		return BucketWireframe
	case f&FlagMaterialRandomColor != 0:
		return BucketRandomColor
	case f&FlagMaterialLineStrip != 0:
		return BucketLineStrip
	default:
		return BucketOpaque
	}
}

// EnabledPass is a bit in Camera.EnabledPasses selecting which
// attachments/passes exist for that camera.
type EnabledPass uint32

const (
	PassGBuffer EnabledPass = 1 << iota
	PassDepth
	PassAmbient
	PassDirectLight
	PassTransparency
	PassPostProcess
	PassUI
)

// LightKind is one of the three supported light types.
type LightKind int

const (
	LightPoint LightKind = iota
	LightSpot
	LightDirectional
)

// InvalidShadowIndex marks a light with no assigned shadow slot.
const InvalidShadowIndex = 0xFFFFFFFF

// Handle aliases the shared generational handle type; every pool in this
// package (nodes, meshes, materials, lights, cameras) hands these out.
type Handle = pool.Handle

// AABB is an axis-aligned bounding box in local mesh space.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Center and Radius derive the bounding sphere the visibility pipeline
// culls against.
func (b AABB) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }
func (b AABB) Radius() float32    { return b.Max.Sub(b.Min).Len() * 0.5 }
