package framegraph

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/vexrender/core/driver"
)

// builder accumulates resource and pass-instance state while every
// instantiated pass's Setup callback runs; compile discards it once
// the immutable Graph has been produced.
type builder struct {
	resources []*resourceNode
	nameIndex map[string]int

	instances []*instance
}

type instance struct {
	decl     PassDecl
	scope    Scope
	scopeIdx int
	queue    Queue

	live bool // set false by pass culling
}

func (b *builder) getOrCreateResource(qualified, base string, kind ResourceKind, scope Scope, scopeIdx int) int {
	if idx, ok := b.nameIndex[qualified]; ok {
		return idx
	}
	idx := len(b.resources)
	b.resources = append(b.resources, &resourceNode{
		name:     qualified,
		baseName: base,
		kind:     kind,
		scope:    scope,
		scopeIdx: scopeIdx,
	})
	b.nameIndex[qualified] = idx
	return idx
}

func (b *builder) recordUsage(resIdx, instIdx int, offset FrameOffset, queue Queue, write bool, kind ResourceKind) {
	node := b.resources[resIdx]
	ref := usageRef{instance: instIdx, offset: offset, queue: queue}
	if write {
		node.writers = append(node.writers, ref)
	} else {
		node.readers = append(node.readers, ref)
	}
}

// Compile instantiates every enabled PassDecl according to its Scope,
// runs Setup to record resource usage, validates the resulting graph
// and produces an executable Graph. Compile errors are always
// *CompileError; callers should use errors.As to inspect Kind.
func Compile(decls []PassDecl, ctx InstanceContext) (*Graph, error) {
	b := &builder{nameIndex: make(map[string]int)}

	for _, d := range decls {
		if !d.Enabled {
			continue
		}
		n := 1
		switch d.Scope {
		case ScopePerCamera:
			n = ctx.NumCameras
		case ScopePerLight:
			n = ctx.NumLights
		}
		for i := 0; i < n; i++ {
			inst := &instance{decl: d, scope: d.Scope, scopeIdx: i, queue: d.Queue, live: true}
			b.instances = append(b.instances, inst)
		}
	}

	for idx, inst := range b.instances {
		if inst.decl.Setup == nil {
			continue
		}
		s := &PassSetup{b: b, instance: idx, scope: inst.scope, scopeIdx: inst.scopeIdx}
		inst.decl.Setup(s, inst.decl.UserData)
	}

	if err := validate(b); err != nil {
		return nil, err
	}

	edges, temporal := buildEdges(b)

	cullDead(b, edges)

	order, err := topoSort(b, edges)
	if err != nil {
		return nil, err
	}

	g, err := allocate(b, ctx)
	if err != nil {
		return nil, err
	}
	g.order = order
	g.framesInFlight = ctx.FramesInFlight
	g.BuildID = uuid.New()
	synthesizeBarriers(b, g, edges, temporal)

	log.Printf("framegraph: compiled graph %s (%d passes, %d resources)", g.BuildID, len(g.instances), len(g.resources))
	return g, nil
}

// edge is a same-frame execution dependency: writer instance must
// record before reader instance.
type edge struct {
	from, to int // instance indices
	resource int
}

func validate(b *builder) error {
	for _, node := range b.resources {
		if node.external {
			continue
		}
		if len(node.readers) > 0 && len(node.writers) == 0 {
			return &CompileError{
				Kind:     DanglingRead,
				Resource: node.name,
				Reason:   "read before any pass writes it",
			}
		}
		for _, w := range node.writers {
			if w.queue == QueueCompute && node.kind == KindTexture2D {
				// A compute-queue write to a texture that no pass ever
				// declared as a render target is fine (storage image
				// write); this module doesn't track per-usage render-
				// target intent beyond TextureDesc.Usage, so check it.
				if node.texDesc.Usage&driver.URenderTarget != 0 {
					return &CompileError{
						Kind:     TypeMismatch,
						Pass:     b.instances[w.instance].decl.Name,
						Resource: node.name,
						Reason:   "compute-queue pass cannot write a render-target attachment",
					}
				}
			}
		}
	}
	return nil
}

func buildEdges(b *builder) ([]edge, []edge) {
	var edges, temporal []edge
	for ri, node := range b.resources {
		for _, w := range node.writers {
			for _, r := range node.readers {
				if w.instance == r.instance {
					continue
				}
				e := edge{from: w.instance, to: r.instance, resource: ri}
				if w.offset == r.offset {
					edges = append(edges, e)
				} else {
					temporal = append(temporal, e)
				}
			}
		}
	}
	return edges, temporal
}

// cullDead removes pass instances that contribute nothing reachable
// from a sink resource. A pass with no declared writes is never culled
// (it's treated as having an implicit external effect, e.g. a readback
// or a compute pass whose only output is a side-channel buffer the
// frame graph doesn't track).
func cullDead(b *builder, edges []edge) {
	liveResource := make([]bool, len(b.resources))
	liveInstance := make([]bool, len(b.instances))

	for i, node := range b.resources {
		if node.sink {
			liveResource[i] = true
		}
	}
	for i := range b.instances {
		if writesOf(b, i) == 0 {
			liveInstance[i] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for ri, node := range b.resources {
			if !liveResource[ri] {
				continue
			}
			for _, w := range node.writers {
				if !liveInstance[w.instance] {
					liveInstance[w.instance] = true
					changed = true
				}
			}
		}
		for ri, node := range b.resources {
			if liveResource[ri] {
				continue
			}
			for _, r := range node.readers {
				if liveInstance[r.instance] {
					liveResource[ri] = true
					changed = true
					break
				}
			}
		}
	}

	for i, inst := range b.instances {
		inst.live = liveInstance[i]
	}
}

func writesOf(b *builder, instIdx int) int {
	n := 0
	for _, node := range b.resources {
		for _, w := range node.writers {
			if w.instance == instIdx {
				n++
			}
		}
	}
	return n
}

func topoSort(b *builder, edges []edge) ([]int, error) {
	n := len(b.instances)
	indeg := make([]int, n)
	adj := make([][]int, n)
	for _, e := range edges {
		if !b.instances[e.from].live || !b.instances[e.to].live {
			continue
		}
		adj[e.from] = append(adj[e.from], e.to)
		indeg[e.to]++
	}
	// Successive live writers of one resource at the same frame offset
	// run in declaration order (write-after-write), so a pass that draws
	// over an earlier pass's output is scheduled after it.
	for _, node := range b.resources {
		last := map[FrameOffset]int{}
		for _, w := range node.writers {
			if !b.instances[w.instance].live {
				continue
			}
			if prev, ok := last[w.offset]; ok && prev != w.instance {
				adj[prev] = append(adj[prev], w.instance)
				indeg[w.instance]++
			}
			last[w.offset] = w.instance
		}
	}

	var queue []int
	for i := 0; i < n; i++ {
		if b.instances[i].live && indeg[i] == 0 {
			queue = append(queue, i)
		}
	}

	var order []int
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, nxt := range adj[cur] {
			indeg[nxt]--
			if indeg[nxt] == 0 {
				queue = append(queue, nxt)
			}
		}
	}

	liveCount := 0
	for i := 0; i < n; i++ {
		if b.instances[i].live {
			liveCount++
		}
	}
	if len(order) != liveCount {
		for i := 0; i < n; i++ {
			if b.instances[i].live && indeg[i] > 0 {
				return nil, &CompileError{
					Kind: CyclicGraph,
					Pass: b.instances[i].decl.Name,
					Reason: fmt.Sprintf(
						"pass participates in a dependency cycle (%d passes unresolved)",
						liveCount-len(order)),
				}
			}
		}
		return nil, &CompileError{Kind: CyclicGraph, Reason: "dependency cycle detected"}
	}
	return order, nil
}
