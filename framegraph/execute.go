package framegraph

import (
	"github.com/google/uuid"
	"github.com/vexrender/core/driver"
)

// barrierOp is a precomputed barrier or transition to emit immediately
// before a given pass instance records its commands.
type barrierOp struct {
	resource int
	temporal bool // memory-only: no execution edge backed this barrier

	transition *driver.Transition // set for texture resources
	barrier    *driver.Barrier    // set for buffer resources
}

// Graph is the immutable, compiled output of Compile: a scheduled list
// of live pass instances plus the physical resources and barriers that
// make running them correct.
type Graph struct {
	instances []*instance
	resources []*resourceNode
	physical  []physicalResource

	order          []int // instance indices, topologically sorted
	barriers       map[int][]barrierOp
	framesInFlight int

	// BuildID stably identifies this compiled Graph in logs: every
	// resource-resolution warning a pass's Execute logs carries it, so
	// entries from the same Compile call group together even when the
	// graph is rebuilt every sync (resize, hot pass-list edit).
	BuildID uuid.UUID
}

// synthesizeBarriers attaches one barrierOp per (producer, consumer,
// resource) edge to the consumer's instance, and one per temporal
// (cross-frame-offset) dependency too — the latter carries no
// execution edge because the previous frame's fence already guarantees
// the write's completion, so only the memory-visibility half matters.
func synthesizeBarriers(b *builder, g *Graph, edges, temporal []edge) {
	g.barriers = make(map[int][]barrierOp)
	for _, e := range edges {
		if !b.instances[e.from].live || !b.instances[e.to].live {
			continue
		}
		g.barriers[e.to] = append(g.barriers[e.to], makeBarrierOp(b.resources[e.resource], e.resource, false))
	}
	for _, e := range temporal {
		if !b.instances[e.from].live || !b.instances[e.to].live {
			continue
		}
		g.barriers[e.to] = append(g.barriers[e.to], makeBarrierOp(b.resources[e.resource], e.resource, true))
	}
}

func makeBarrierOp(node *resourceNode, resIdx int, temporal bool) barrierOp {
	op := barrierOp{resource: resIdx, temporal: temporal}
	if node.kind == KindBuffer {
		op.barrier = &driver.Barrier{
			SyncBefore: driver.SAll, SyncAfter: driver.SAll,
			AccessBefore: driver.AAnyWrite, AccessAfter: driver.AAnyRead,
		}
		return op
	}

	before := driver.LCommon
	switch {
	case node.texDesc.Usage&driver.URenderTarget != 0 && isDepthFmt(node.texDesc.Format):
		before = driver.LDSTarget
	case node.texDesc.Usage&driver.URenderTarget != 0:
		before = driver.LColorTarget
	}
	op.transition = &driver.Transition{
		Barrier: driver.Barrier{
			SyncBefore: driver.SAll, SyncAfter: driver.SAll,
			AccessBefore: driver.AAnyWrite, AccessAfter: driver.AAnyRead,
		},
		LayoutBefore: before,
		LayoutAfter:  driver.LShaderRead,
	}
	return op
}

func isDepthFmt(f driver.PixelFmt) bool {
	switch f {
	case driver.D16un, driver.D32f, driver.D24unS8ui, driver.D32fS8ui:
		return true
	default:
		return false
	}
}

// Externals supplies the per-frame values of external resources whose
// identity changes frame to frame (the swapchain image view acquired
// this frame). Keys are the name a pass registered the resource under.
type Externals map[string]any

// Execute records every live pass's commands, in dependency order, for
// the given frame index, emitting each pass's precomputed barriers
// immediately before invoking it.
func (g *Graph) Execute(frameIndex int, cmd driver.CmdBuffer, ext Externals) {
	for name, ref := range ext {
		if idx, ok := g.nameIndex(name); ok {
			g.resources[idx].externalRef = ref
		}
	}

	pr := &PassResources{g: g, frameIndex: frameIndex}
	for _, instIdx := range g.order {
		inst := g.instances[instIdx]
		if ops, ok := g.barriers[instIdx]; ok {
			emitBarriers(cmd, ops, g.physical, frameIndex)
		}
		if inst.decl.Execute != nil {
			inst.decl.Execute(pr, cmd, inst.decl.UserData)
		}
	}
}

// Destroy releases every physical resource g owns. Safe to call on nil
// and on a Graph whose resources were never allocated (compile error
// path). External resources are caller-owned and untouched.
func (g *Graph) Destroy() {
	if g == nil {
		return
	}
	for _, p := range g.physical {
		for _, t := range p.textures {
			if t.view != nil {
				t.view.Destroy()
			}
			if t.img != nil {
				t.img.Destroy()
			}
		}
		for _, buf := range p.buffers {
			if buf != nil {
				buf.Destroy()
			}
		}
	}
}

func (g *Graph) nameIndex(name string) (int, bool) {
	for i, node := range g.resources {
		if node.name == name {
			return i, true
		}
	}
	return 0, false
}

func emitBarriers(cmd driver.CmdBuffer, ops []barrierOp, physical []physicalResource, frameIndex int) {
	var transitions []driver.Transition
	var barriers []driver.Barrier
	for _, op := range ops {
		p := &physical[op.resource]
		if op.transition != nil {
			t := *op.transition
			if p.node.external {
				if v, ok := p.node.externalRef.(driver.ImageView); ok {
					t.IView = v
				}
			} else if len(p.textures) > 0 {
				i := resolveIndex(frameIndex, OffsetCurrent, len(p.textures))
				t.IView = p.textures[i].view
			}
			transitions = append(transitions, t)
		} else if op.barrier != nil {
			barriers = append(barriers, *op.barrier)
		}
	}
	if len(transitions) > 0 {
		cmd.Transition(transitions)
	}
	if len(barriers) > 0 {
		cmd.Barrier(barriers)
	}
}
