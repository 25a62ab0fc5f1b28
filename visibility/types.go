// Package visibility implements the per-camera GPU-driven culling
// pipeline: frustum plus hierarchical-Z occlusion tests that produce
// the indirect draw command buffers each lighting bucket consumes.
// The cull algorithm itself runs in a compute shader; this package's
// job is wiring — declaring the frame-graph passes, buffers and
// dispatches that drive it, and sizing the depth pyramid mip chain.
package visibility

import "github.com/vexrender/core/scene"

// DrawCommand mirrors the GPU-side indexed-indirect draw record a
// surviving node's cull thread writes into a bucket's draw_commands
// buffer.
type DrawCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32 // node handle index, doubles as the per-draw node id
}

// drawCommandStride is DrawCommand's std430 size in bytes.
const drawCommandStride = 20

// Buckets lists the default classification buckets a camera's
// visibility pipeline produces draw lists for. Buckets beyond the
// scene package's Bucket enum (e.g. a custom debug bucket) can be
// appended by the embedder before calling RegisterCullPasses.
var Buckets = []scene.Bucket{
	scene.BucketOpaque,
	scene.BucketTransparent,
	scene.BucketSprite,
}
