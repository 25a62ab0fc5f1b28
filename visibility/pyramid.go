package visibility

import (
	"encoding/binary"

	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/framegraph"
	"github.com/vexrender/core/internal/mathutil"
)

// pyramidUserData is the closure state the depth-pyramid build pass
// needs at Execute time.
type pyramidUserData struct {
	width, height int
	levels        int
	pipe          driver.Pipeline
	sampler       driver.Sampler // MAX-reduction sampler reused by consumers

	depth  framegraph.ResourceId
	target framegraph.ResourceId
}

// PyramidExtent returns the depth pyramid's base mip dimensions: the
// largest power-of-two at or below half the source depth buffer's
// extent in each axis.
func PyramidExtent(depthW, depthH int) (int, int) {
	return int(prevPow2(uint32(depthW / 2))), int(prevPow2(uint32(depthH / 2)))
}

// prevPow2 returns the largest power of two <= v, or 0 for v == 0.
func prevPow2(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	n := mathutil.NextPow2(v)
	if n == v {
		return v
	}
	return n / 2
}

// PyramidLevels returns the mip count of a pyramid whose base level is
// maxDim texels wide: ceil(log2(maxDim)) + 1.
func PyramidLevels(width, height int) int {
	maxDim := uint32(width)
	if height > width {
		maxDim = uint32(height)
	}
	return mathutil.MipLevels(maxDim)
}

// RegisterPyramidPass appends the Hi-Z build pass to decls, scoped
// ScopePerCamera. The pyramid is written at FrameOffset.NEXT and read
// by RegisterCullPasses at FrameOffset.CURRENT the following frame —
// a temporal dependency with no execution edge, since the previous
// frame's fence already guarantees the write completed.
func RegisterPyramidPass(decls *[]framegraph.PassDecl, depthW, depthH int, pipe driver.Pipeline, sampler driver.Sampler) {
	w, h := PyramidExtent(depthW, depthH)
	ud := &pyramidUserData{
		width: w, height: h,
		levels:  PyramidLevels(w, h),
		pipe:    pipe,
		sampler: sampler,
	}
	*decls = append(*decls, framegraph.PassDecl{
		Name:     "depth_pyramid_build",
		Scope:    framegraph.ScopePerCamera,
		Queue:    framegraph.QueueCompute,
		Setup:    ud.setup,
		Execute:  ud.execute,
		UserData: ud,
		Enabled:  true,
	})
}

func (u *pyramidUserData) setup(s *framegraph.PassSetup, _ any) {
	if depth, ok := s.FindTexture("depth"); ok {
		u.depth = depth
		s.ReadTexture(depth, framegraph.OffsetCurrent)
	}
	u.target = s.CreateTexture("depth_pyramid", framegraph.TextureDesc{
		Extent: driver.Dim3D{Width: u.width, Height: u.height, Depth: 1},
		Format: driver.R32f,
		Levels: u.levels,
		Usage:  driver.UShaderWrite | driver.UShaderSample,
	})
	s.WriteTexture(u.target, framegraph.OffsetNext)
}

func (u *pyramidUserData) execute(r *framegraph.PassResources, cmd driver.CmdBuffer, _ any) {
	cmd.SetPipeline(u.pipe)

	for level := 0; level < u.levels; level++ {
		var buf [8]byte
		binary.LittleEndian.PutUint32(buf[0:4], uint32(level))
		binary.LittleEndian.PutUint32(buf[4:8], boolToU32(level == 0))
		cmd.SetPushConst(driver.SCompute, 0, buf[:])

		gw := maxInt(1, (u.width>>uint(level)+31)/32)
		gh := maxInt(1, (u.height>>uint(level)+31)/32)
		cmd.Dispatch(gw, gh, 1)

		if level+1 < u.levels {
			cmd.Barrier([]driver.Barrier{{
				SyncBefore: driver.SComputeShading, SyncAfter: driver.SComputeShading,
				AccessBefore: driver.AShaderWrite, AccessAfter: driver.AShaderRead,
			}})
		}
	}
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
