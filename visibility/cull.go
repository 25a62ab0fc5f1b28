package visibility

import (
	"encoding/binary"

	"github.com/vexrender/core/config"
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/framegraph"
	"github.com/vexrender/core/scene"
)

// cullUserData is the per-(camera, bucket) closure state the cull
// compute pass needs at Execute time.
type cullUserData struct {
	bucket       scene.Bucket
	maxDrawables int
	pipe         driver.Pipeline

	drawCmds, drawCount framegraph.ResourceId
}

// RegisterCullPasses appends one cull-compute PassDecl per bucket to
// decls, scoped ScopePerCamera: the frame graph instantiates one
// compute dispatch per (camera, bucket) pair each frame. pipe is the
// shared compute pipeline driving the frustum+Hi-Z test; only the
// bucket index in the push constants differs between dispatches.
func RegisterCullPasses(decls *[]framegraph.PassDecl, maxDrawables int, pipe driver.Pipeline) {
	for _, bucket := range Buckets {
		ud := &cullUserData{bucket: bucket, maxDrawables: maxDrawables, pipe: pipe}
		*decls = append(*decls, framegraph.PassDecl{
			Name:     "visibility_cull",
			Scope:    framegraph.ScopePerCamera,
			Queue:    framegraph.QueueCompute,
			Setup:    ud.setup,
			Execute:  ud.execute,
			UserData: ud,
			Enabled:  true,
		})
	}
}

func (u *cullUserData) setup(s *framegraph.PassSetup, _ any) {
	u.drawCmds = s.CreateBuffer(bucketBufferName(u.bucket, "draw_commands"), framegraph.BufferDesc{
		Size:  int64(u.maxDrawables) * drawCommandStride,
		Usage: driver.UShaderWrite | driver.UIndirectData,
	})
	u.drawCount = s.CreateBuffer(bucketBufferName(u.bucket, "draw_count"), framegraph.BufferDesc{
		Size:  4,
		Usage: driver.UShaderWrite | driver.UIndirectData,
	})
	s.WriteBuffer(u.drawCmds, framegraph.OffsetCurrent)
	s.WriteBuffer(u.drawCount, framegraph.OffsetCurrent)

	if pyramid, ok := s.FindTexture("depth_pyramid"); ok {
		s.ReadTexture(pyramid, framegraph.OffsetCurrent)
	}
}

func (u *cullUserData) execute(_ *framegraph.PassResources, cmd driver.CmdBuffer, _ any) {
	cmd.SetPipeline(u.pipe)

	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(u.bucket))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(u.maxDrawables))
	cmd.SetPushConst(driver.SCompute, 0, buf[:])

	groups := (u.maxDrawables + 63) / 64
	cmd.Dispatch(groups, 1, 1)
}

func bucketBufferName(b scene.Bucket, suffix string) string {
	names := [...]string{"opaque", "transparent", "wireframe", "random_color", "line_strip", "sprite"}
	if int(b) < len(names) {
		return names[b] + "_" + suffix
	}
	return "bucket_" + suffix
}

// DrawCountInvariant reports whether the recorded draw_count for a
// bucket never exceeds the number of active nodes matching it — the
// correctness property the cull shader's atomic increment must uphold.
func DrawCountInvariant(drawCount uint32, activeMatching int) bool {
	return int(drawCount) <= activeMatching
}
