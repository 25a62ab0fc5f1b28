package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vexrender/core/internal/pool"
)

// Node is a per-frame-updated instance of a Mesh/Material pair with a
// world transform.
type Node struct {
	World    mgl32.Mat4
	Mesh     Handle
	Material Handle
	Flags    NodeFlags

	// BoneBase/BoneCount index into the skinning buffer; zero BoneCount
	// means an unskinned (static) node.
	BoneBase  uint32
	BoneCount uint32
}

// NodeTable pools Nodes, rewritten each frame from the CPU scene
// snapshot.
type NodeTable struct {
	pool *pool.Pool[Node]
}

func NewNodeTable() *NodeTable { return &NodeTable{pool: pool.New[Node]()} }

func (t *NodeTable) Add(n Node) Handle          { return t.pool.Alloc(n) }
func (t *NodeTable) Get(h Handle) (Node, bool)  { return t.pool.Get(h) }
func (t *NodeTable) GetPtr(h Handle) (*Node, bool) { return t.pool.GetPtr(h) }
func (t *NodeTable) Remove(h Handle)             { t.pool.Free(h) }
func (t *NodeTable) Each(fn func(Handle, *Node)) { t.pool.Each(fn) }
func (t *NodeTable) Len() int                     { return t.pool.Len() }
