package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flint/internal/mathutil"
)

func TestNewTransformUniformsComputesInverseTranspose(t *testing.T) {
	model := mathutil.Scaling(mathutil.Vec3{X: 2, Y: 1, Z: 1})
	u := NewTransformUniforms(mathutil.Mat4Identity, model, mathutil.Vec3{X: 0, Y: 0, Z: 5})

	assert.Equal(t, mathutil.Vec3{X: 0, Y: 0, Z: 5}, u.CameraPos)
	normal := u.ModelInvTranspose.TransformDirection(mathutil.Vec3{X: 1, Y: 0, Z: 0}).Normalize()
	assert.InDelta(t, 1.0, normal.Length(), 1e-9)
}

func TestNewTransformUniformsFallsBackToIdentityWhenSingular(t *testing.T) {
	singular := mathutil.Scaling(mathutil.Vec3{X: 0, Y: 1, Z: 1})
	u := NewTransformUniforms(mathutil.Mat4Identity, singular, mathutil.Zero)
	assert.Equal(t, mathutil.Mat4Identity, u.ModelInvTranspose)
}

func TestMaterialUniformsFromMaterialCopiesTextureFlags(t *testing.T) {
	m := Material{
		Name:             "rusted-panel",
		BaseColor:        [4]float64{1, 1, 1, 1},
		Metallic:         0.8,
		Roughness:        0.3,
		BaseColorTexture: "panel_albedo.png",
	}
	u := MaterialUniformsFromMaterial(m, DebugNormalVisualization, true)

	require.True(t, u.HasBaseColorTexture)
	assert.False(t, u.HasNormalMap)
	assert.False(t, u.HasMetallicRoughness)
	assert.Equal(t, DebugNormalVisualization, u.DebugMode)
	assert.True(t, u.EnableTonemapping)
}

func TestNewLightUniformsCarriesCascades(t *testing.T) {
	lights := LightSet{Directional: []DirectionalLight{{}}}
	cascades := []Cascade{{Near: 0.1, Far: 10}}
	u := NewLightUniforms(lights, cascades)

	assert.Len(t, u.Directional, 1)
	assert.Equal(t, cascades, u.Cascades)
}
