package render

// DebugMode selects an alternate shading path for diagnosing material
// and lighting authoring.
type DebugMode int

const (
	DebugPBR DebugMode = iota
	DebugAlbedoOnly
	DebugNormalVisualization
	DebugUVChecker
	DebugMetallicRoughness
	DebugWireframeOnly
)

func (m DebugMode) String() string {
	switch m {
	case DebugPBR:
		return "pbr"
	case DebugAlbedoOnly:
		return "albedo"
	case DebugNormalVisualization:
		return "normal"
	case DebugUVChecker:
		return "uv_checker"
	case DebugMetallicRoughness:
		return "metallic_roughness"
	case DebugWireframeOnly:
		return "wireframe"
	default:
		return "unknown"
	}
}

// OutlinePipelineSequence names the draw order the outline pipeline
// switches to under DebugWireframeOnly, so the selection highlight
// still reads cleanly over bare wireframe.
func (m DebugMode) OutlinePipelineSequence() []string {
	if m == DebugWireframeOnly {
		return []string{"depth_prepass", "backface_inverted_hull", "overlay_lines"}
	}
	return []string{"inverted_hull_frontface_cull"}
}
