package render

import "flint/internal/mathutil"

// TransformUniforms is bind group 0: view_proj/model/
// model_inv_transpose/camera_pos, the per-draw transform state a
// forward renderer's vertex and fragment stages both need.
type TransformUniforms struct {
	ViewProj          mathutil.Mat4
	Model             mathutil.Mat4
	ModelInvTranspose mathutil.Mat4
	CameraPos         mathutil.Vec3
}

func NewTransformUniforms(viewProj, model mathutil.Mat4, cameraPos mathutil.Vec3) TransformUniforms {
	invT, ok := model.Inverse()
	if !ok {
		invT = mathutil.Mat4Identity
	} else {
		invT = invT.Transpose()
	}
	return TransformUniforms{ViewProj: viewProj, Model: model, ModelInvTranspose: invT, CameraPos: cameraPos}
}

// MaterialUniforms is bind group 1's non-texture payload, grounded on
// the same pipeline.rs MaterialUniforms shape.
type MaterialUniforms struct {
	BaseColor            [4]float64
	Metallic             float64
	Roughness            float64
	UseVertexColor       bool
	DebugMode            DebugMode
	EnableTonemapping    bool
	HasBaseColorTexture  bool
	HasNormalMap         bool
	HasMetallicRoughness bool
}

func MaterialUniformsFromMaterial(m Material, mode DebugMode, tonemapping bool) MaterialUniforms {
	return MaterialUniforms{
		BaseColor:            m.BaseColor,
		Metallic:             m.Metallic,
		Roughness:            m.Roughness,
		DebugMode:            mode,
		EnableTonemapping:    tonemapping,
		HasBaseColorTexture:  m.BaseColorTexture != "",
		HasNormalMap:         m.NormalTexture != "",
		HasMetallicRoughness: m.MetallicRoughnessTexture != "",
	}
}

// LightUniforms is bind group 2: the extracted light lists plus the
// active shadow cascade view-projections.
type LightUniforms struct {
	Directional []DirectionalLight
	Point       []PointLight
	Spot        []SpotLight
	Cascades    []Cascade
}

func NewLightUniforms(lights LightSet, cascades []Cascade) LightUniforms {
	return LightUniforms{
		Directional: lights.Directional,
		Point:       lights.Point,
		Spot:        lights.Spot,
		Cascades:    cascades,
	}
}

// BoneUniforms is bind group 3, present only for skinned draw calls.
type BoneUniforms struct {
	Matrices []mathutil.Mat4
}

const MaxBoneInfluences = 4
