package bindless

import "github.com/vexrender/core/driver"

// Manager is the Bindless Resource Manager: it owns every
// GPU-visible resource the render core addresses by a stable 32-bit
// index. It creates no descriptor sets, heaps or tables for these
// resources; it only owns the textures, meshes and buffers themselves.
type Manager struct {
	framesInFlight int

	Textures2D *TexturePool
	TexturesCube *TexturePool
	Meshes     *MeshStore

	// Bindless storage buffers: one device-
	// local buffer per logical array, written through a host mirror.
	NodeData        *BindlessBuffer
	MeshData        *BindlessBuffer
	Materials       *BindlessBuffer
	Lights          *BindlessBuffer
	WorldMatrices   *BindlessBuffer
	Bones           *BindlessBuffer
	Sprites         *BindlessBuffer

	// Per-frame buffers: FIF copies, one per frame in flight (no
	// descriptor set is created for any copy).
	Cameras    *PerFrameBuffer
	ShadowData *PerFrameBuffer
}

// New creates a Manager sized from the given element capacities. gpu
// must already be Bind-ed. Every allocation that fails unwinds the ones
// that already succeeded.
func New(fif, maxNodes, maxMeshes, maxMaterials, maxLights, maxWorldMatrices, maxBones, maxSprites, maxCameras, maxShadowSlots int) (m *Manager, err error) {
	m = &Manager{framesInFlight: fif}
	defer func() {
		if err != nil {
			m.Destroy()
			m = nil
		}
	}()

	m.Textures2D = NewImage2DPool()
	m.TexturesCube = NewImageCubePool()
	m.Meshes = NewMeshStore()

	const bindlessUsage = driver.UShaderRead | driver.UShaderWrite

	if m.NodeData, err = NewBindlessBuffer(maxNodes, strideOf(SetNodeData), bindlessUsage); err != nil {
		return
	}
	if m.MeshData, err = NewBindlessBuffer(maxMeshes, strideOf(SetMeshData), bindlessUsage); err != nil {
		return
	}
	if m.Materials, err = NewBindlessBuffer(maxMaterials, strideOf(SetMaterials), bindlessUsage); err != nil {
		return
	}
	if m.Lights, err = NewBindlessBuffer(maxLights, strideOf(SetLights), bindlessUsage); err != nil {
		return
	}
	if m.WorldMatrices, err = NewBindlessBuffer(maxWorldMatrices, 64, bindlessUsage); err != nil {
		return
	}
	if m.Bones, err = NewBindlessBuffer(maxBones, strideOf(SetVertexSkinning), bindlessUsage); err != nil {
		return
	}
	if m.Sprites, err = NewBindlessBuffer(maxSprites, strideOf(SetSprite), bindlessUsage); err != nil {
		return
	}
	if m.Cameras, err = NewPerFrameBuffer(fif, 256, driver.UShaderConst); err != nil {
		return
	}
	if m.ShadowData, err = NewPerFrameBuffer(fif, int64(maxShadowSlots)*int64(strideOf(SetShadowData)), driver.UShaderRead); err != nil {
		return
	}
	return m, nil
}

// FlushBindless uploads every bindless buffer's host mirror to the
// device. Called once per frame before command buffer submission.
func (m *Manager) FlushBindless() error {
	for _, b := range []*BindlessBuffer{m.NodeData, m.MeshData, m.Materials, m.Lights, m.WorldMatrices, m.Bones, m.Sprites} {
		if b == nil {
			continue
		}
		if err := b.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Destroy releases every resource the Manager owns. Safe to call on a
// partially-constructed Manager.
func (m *Manager) Destroy() {
	if m == nil {
		return
	}
	destroyables := []interface{ Destroy() }{
		m.Textures2D, m.TexturesCube, m.Meshes, m.NodeData, m.MeshData,
		m.Materials, m.Lights, m.WorldMatrices, m.Bones, m.Sprites,
		m.Cameras, m.ShadowData,
	}
	for _, d := range destroyables {
		if d != nil {
			d.Destroy()
		}
	}
}
