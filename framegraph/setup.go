package framegraph

import "fmt"

// resourceNode is the compiler's bookkeeping for one declared resource,
// transient or external.
type resourceNode struct {
	name     string // scope-qualified, e.g. "depth_cam_0"
	baseName string
	kind     ResourceKind
	scope    Scope
	scopeIdx int

	external     bool
	externalRef  any // swapchain ImageView, bindless Buffer, ...
	texDesc      TextureDesc
	bufDesc      BufferDesc

	// sink marks a resource that must survive pass culling regardless
	// of downstream readers (the swapchain image is the usual case).
	sink bool

	// writers/readers record (instance index, frame offset) per usage,
	// used both for dependency-edge construction and for the
	// multi-copy decision.
	writers []usageRef
	readers []usageRef
}

type usageRef struct {
	instance int
	offset   FrameOffset
	queue    Queue
}

// PassSetup is handed to a pass instance's Setup callback; it is the
// only way a pass declares resource usage.
type PassSetup struct {
	b        *builder
	instance int
	scope    Scope
	scopeIdx int
}

func (s *PassSetup) qualify(name string) string {
	switch s.scope {
	case ScopePerCamera:
		return fmt.Sprintf("%s_cam_%d", name, s.scopeIdx)
	case ScopePerLight:
		return fmt.Sprintf("%s_light_%d", name, s.scopeIdx)
	default:
		return name
	}
}

// CreateTexture declares a transient texture owned by the graph.
func (s *PassSetup) CreateTexture(name string, desc TextureDesc) ResourceId {
	qn := s.qualify(name)
	idx := s.b.getOrCreateResource(qn, name, KindTexture2D, s.scope, s.scopeIdx)
	node := s.b.resources[idx]
	node.texDesc = desc
	return ResourceId{Index: uint32(idx)}
}

// CreateTextureCube declares a transient cube texture (cube shadow maps,
// environment map placeholder before import).
func (s *PassSetup) CreateTextureCube(name string, desc TextureDesc) ResourceId {
	qn := s.qualify(name)
	idx := s.b.getOrCreateResource(qn, name, KindTextureCube, s.scope, s.scopeIdx)
	node := s.b.resources[idx]
	node.texDesc = desc
	return ResourceId{Index: uint32(idx)}
}

// CreateBuffer declares a transient buffer owned by the graph.
func (s *PassSetup) CreateBuffer(name string, desc BufferDesc) ResourceId {
	qn := s.qualify(name)
	idx := s.b.getOrCreateResource(qn, name, KindBuffer, s.scope, s.scopeIdx)
	node := s.b.resources[idx]
	node.bufDesc = desc
	return ResourceId{Index: uint32(idx)}
}

// RegisterExternalTexture references a texture owned outside the graph
// (a swapchain image, a bindless-manager render target).
func (s *PassSetup) RegisterExternalTexture(name string, ref any, sink bool) ResourceId {
	qn := s.qualify(name)
	idx := s.b.getOrCreateResource(qn, name, KindTexture2D, s.scope, s.scopeIdx)
	node := s.b.resources[idx]
	node.external = true
	node.externalRef = ref
	node.sink = sink
	return ResourceId{Index: uint32(idx)}
}

// RegisterExternalBuffer references a buffer owned outside the graph
// (a bindless storage buffer).
func (s *PassSetup) RegisterExternalBuffer(name string, ref any) ResourceId {
	qn := s.qualify(name)
	idx := s.b.getOrCreateResource(qn, name, KindBuffer, s.scope, s.scopeIdx)
	node := s.b.resources[idx]
	node.external = true
	node.externalRef = ref
	return ResourceId{Index: uint32(idx)}
}

// FindTexture looks up a texture by scope-qualified name, falling back
// to global scope ("depth" in camera 0 resolves to "depth_cam_0").
func (s *PassSetup) FindTexture(name string) (ResourceId, bool) {
	return s.find(name, KindTexture2D, s.scope, s.scopeIdx)
}

// FindBuffer looks up a buffer the same way FindTexture does.
func (s *PassSetup) FindBuffer(name string) (ResourceId, bool) {
	return s.find(name, KindBuffer, s.scope, s.scopeIdx)
}

// FindTextureInScope performs a cross-scope lookup (the lighting pass
// reads every light's shadow map by iterating scope indices). Both 2D
// and cube textures match, 2D first.
func (s *PassSetup) FindTextureInScope(name string, scopeIdx int) (ResourceId, bool) {
	if id, ok := s.find(name, KindTexture2D, ScopePerLight, scopeIdx); ok {
		return id, true
	}
	return s.find(name, KindTextureCube, ScopePerLight, scopeIdx)
}

func (s *PassSetup) find(name string, kind ResourceKind, scope Scope, scopeIdx int) (ResourceId, bool) {
	qn := name
	switch scope {
	case ScopePerCamera:
		qn = fmt.Sprintf("%s_cam_%d", name, scopeIdx)
	case ScopePerLight:
		qn = fmt.Sprintf("%s_light_%d", name, scopeIdx)
	}
	if idx, ok := s.b.nameIndex[qn]; ok && s.b.resources[idx].kind == kind {
		return ResourceId{Index: uint32(idx)}, true
	}
	if idx, ok := s.b.nameIndex[name]; ok && s.b.resources[idx].kind == kind {
		return ResourceId{Index: uint32(idx)}, true
	}
	return ResourceId{}, false
}

// ReadTexture records a texture read at the given frame offset.
func (s *PassSetup) ReadTexture(id ResourceId, offset FrameOffset) {
	s.b.recordUsage(int(id.Index), s.instance, offset, s.b.instances[s.instance].queue, false, KindTexture2D)
}

// WriteTexture records a texture write at the given frame offset.
func (s *PassSetup) WriteTexture(id ResourceId, offset FrameOffset) {
	s.b.recordUsage(int(id.Index), s.instance, offset, s.b.instances[s.instance].queue, true, KindTexture2D)
}

// ReadBuffer records a buffer read at the given frame offset.
func (s *PassSetup) ReadBuffer(id ResourceId, offset FrameOffset) {
	s.b.recordUsage(int(id.Index), s.instance, offset, s.b.instances[s.instance].queue, false, KindBuffer)
}

// WriteBuffer records a buffer write at the given frame offset.
func (s *PassSetup) WriteBuffer(id ResourceId, offset FrameOffset) {
	s.b.recordUsage(int(id.Index), s.instance, offset, s.b.instances[s.instance].queue, true, KindBuffer)
}
