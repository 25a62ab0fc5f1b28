package scene

// Scene is the CPU-side snapshot of everything the renderer can draw:
// the source of truth that gets uploaded into bindless buffers each
// frame. The embedder owns a Scene and mutates it
// between frames; the renderer only reads it during snapshot upload.
type Scene struct {
	Nodes     *NodeTable
	Meshes    *MeshTable
	Materials *MaterialTable
	Lights    *LightTable
	Cameras   *CameraTable
}

// New creates an empty Scene with all tables initialized.
func New() *Scene {
	return &Scene{
		Nodes:     NewNodeTable(),
		Meshes:    NewMeshTable(),
		Materials: NewMaterialTable(),
		Lights:    NewLightTable(),
		Cameras:   NewCameraTable(),
	}
}

// ActiveNodesMatching counts nodes in the given bucket that are
// currently visible. A culling pipeline's draw_count for this bucket
// must never exceed this value.
func (s *Scene) ActiveNodesMatching(b Bucket) int {
	n := 0
	s.Nodes.Each(func(_ Handle, node *Node) {
		if node.Flags&FlagVisible == 0 {
			return
		}
		if BucketOf(node.Flags) == b {
			n++
		}
	})
	return n
}
