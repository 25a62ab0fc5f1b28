package framegraph

import (
	"fmt"
	"log"

	"github.com/vexrender/core/driver"
)

// gpu is the driver this package allocates transient graph resources
// from. Bind must be called once before Compile.
var gpu driver.GPU

// Bind sets the driver.GPU used to allocate physical resources.
func Bind(g driver.GPU) { gpu = g }

// physicalTexture is one transient image plus its default view.
type physicalTexture struct {
	img  driver.Image
	view driver.ImageView
}

// physicalResource holds every frame-in-flight copy of one declared
// resource, or the external reference(s) supplying it.
type physicalResource struct {
	node *resourceNode

	textures []physicalTexture
	buffers  []driver.Buffer
}

func (p *physicalResource) copyCount() int {
	if len(p.textures) > 0 {
		return len(p.textures)
	}
	return len(p.buffers)
}

// allocate creates the physical backing for every transient resource.
// A resource needs FramesInFlight copies only if some usage reads or
// writes it at a non-CURRENT offset; otherwise a single copy suffices,
// since nothing this frame needs to see last frame's or next frame's
// version of it.
func allocate(b *builder, ctx InstanceContext) (*Graph, error) {
	g := &Graph{
		instances: b.instances,
		resources: b.resources,
		physical:  make([]physicalResource, len(b.resources)),
	}

	for i, node := range b.resources {
		g.physical[i].node = node
		if node.external {
			continue
		}

		copies := 1
		if needsMultiCopy(node) {
			copies = maxInt(ctx.FramesInFlight, 1)
		}

		switch node.kind {
		case KindTexture2D, KindTextureCube:
			layers := 1
			vt := driver.IView2D
			if node.kind == KindTextureCube {
				layers = 6
				vt = driver.IViewCube
			}
			pt := make([]physicalTexture, copies)
			for c := 0; c < copies; c++ {
				img, err := gpu.NewImage(node.texDesc.Format, node.texDesc.Extent, layers, maxInt(node.texDesc.Levels, 1), 1, node.texDesc.Usage)
				if err != nil {
					return nil, &CompileError{Kind: AliasingFailed, Resource: node.name, Reason: err.Error()}
				}
				view, err := img.NewView(vt, 0, layers, 0, maxInt(node.texDesc.Levels, 1))
				if err != nil {
					return nil, &CompileError{Kind: AliasingFailed, Resource: node.name, Reason: err.Error()}
				}
				pt[c] = physicalTexture{img: img, view: view}
			}
			g.physical[i].textures = pt
		case KindBuffer:
			bufs := make([]driver.Buffer, copies)
			for c := 0; c < copies; c++ {
				buf, err := gpu.NewBuffer(node.bufDesc.Size, false, node.bufDesc.Usage)
				if err != nil {
					return nil, &CompileError{Kind: AliasingFailed, Resource: node.name, Reason: err.Error()}
				}
				bufs[c] = buf
			}
			g.physical[i].buffers = bufs
		}
	}
	return g, nil
}

func needsMultiCopy(node *resourceNode) bool {
	for _, w := range node.writers {
		if w.offset != OffsetCurrent {
			return true
		}
	}
	for _, r := range node.readers {
		if r.offset != OffsetCurrent {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// PassResources is handed to a pass instance's Execute callback to
// resolve the physical handle for each resource it declared, relative
// to the frame currently executing.
type PassResources struct {
	g          *Graph
	frameIndex int
}

// Texture resolves a texture's physical view at the given frame offset.
// A pass whose resource isn't ready yet (external ref not supplied this
// frame, wrong resource kind) gets a logged, skippable error rather than
// a panic: Execute callbacks are expected to check err and return.
func (r *PassResources) Texture(id ResourceId, offset FrameOffset) (driver.ImageView, error) {
	p := &r.g.physical[id.Index]
	if p.node.external {
		if ref, ok := p.node.externalRef.(driver.ImageView); ok {
			return ref, nil
		}
		return nil, r.logSkip(fmt.Errorf("framegraph: resource %q has no registered image view", p.node.name))
	}
	if len(p.textures) == 0 {
		return nil, r.logSkip(fmt.Errorf("framegraph: resource %q is not a texture", p.node.name))
	}
	i := resolveIndex(r.frameIndex, offset, len(p.textures))
	return p.textures[i].view, nil
}

// Image resolves a texture's underlying driver.Image at the given frame
// offset. Most passes only need the default view Texture returns; a
// pass that must build its own per-layer views (a cube texture's six
// faces, rendered as individual 2D render targets) uses this instead.
func (r *PassResources) Image(id ResourceId, offset FrameOffset) (driver.Image, error) {
	p := &r.g.physical[id.Index]
	if p.node.external {
		return nil, r.logSkip(fmt.Errorf("framegraph: resource %q is external, has no owned image", p.node.name))
	}
	if len(p.textures) == 0 {
		return nil, r.logSkip(fmt.Errorf("framegraph: resource %q is not a texture", p.node.name))
	}
	i := resolveIndex(r.frameIndex, offset, len(p.textures))
	return p.textures[i].img, nil
}

// Buffer resolves a buffer's physical handle at the given frame offset.
func (r *PassResources) Buffer(id ResourceId, offset FrameOffset) (driver.Buffer, error) {
	p := &r.g.physical[id.Index]
	if p.node.external {
		if ref, ok := p.node.externalRef.(driver.Buffer); ok {
			return ref, nil
		}
		return nil, r.logSkip(fmt.Errorf("framegraph: resource %q has no registered buffer", p.node.name))
	}
	if len(p.buffers) == 0 {
		return nil, r.logSkip(fmt.Errorf("framegraph: resource %q is not a buffer", p.node.name))
	}
	i := resolveIndex(r.frameIndex, offset, len(p.buffers))
	return p.buffers[i], nil
}

func (r *PassResources) logSkip(err error) error {
	log.Printf("framegraph: graph %s: %v (pass skipped)", r.g.BuildID, err)
	return err
}

func resolveIndex(frameIndex int, offset FrameOffset, n int) int {
	if n <= 1 {
		return 0
	}
	i := ((frameIndex+int(offset))%n + n) % n
	return i
}
