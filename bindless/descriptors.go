package bindless

// Set identifies one of the descriptor set layouts passes bind as
// inputs. Within this module the constants only select element strides
// (strideOf) when Manager sizes its storage buffers.
type Set int

const (
	SetCamera Set = iota
	SetTextures
	SetBones
	SetMaterials
	SetNodeData
	SetMeshData
	SetVertexSkinning
	SetLights
	SetShadowData
	SetSprite
	setCount
)

// strideOf returns the per-element byte stride used when sizing the
// storage buffer backing a bindless Set. Picked to match std430 layout
// rules for the corresponding GPU-side struct; exact field layouts live
// in the shader source.
func strideOf(s Set) int {
	switch s {
	case SetNodeData:
		return 128 // world matrix (64) + node fields (64)
	case SetMeshData:
		return 32
	case SetMaterials:
		return 48
	case SetLights:
		return 64
	case SetShadowData:
		return 224 // view+proj matrices (128) + 6 frustum planes (96)
	case SetVertexSkinning:
		return 4 * 16 // one mat4 per bone
	case SetSprite:
		return 32
	default:
		return 16
	}
}
