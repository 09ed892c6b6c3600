package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHemisphereKernelReturnsRequestedCount(t *testing.T) {
	k := HemisphereKernel(64)
	assert.Len(t, k, 64)
}

func TestHemisphereKernelIsDeterministic(t *testing.T) {
	a := HemisphereKernel(32)
	b := HemisphereKernel(32)
	assert.Equal(t, a, b)
}

func TestHemisphereKernelSamplesStayInUpperHemisphere(t *testing.T) {
	k := HemisphereKernel(64)
	for i, s := range k {
		assert.GreaterOrEqualf(t, s[2], 0.0, "sample %d has negative z %v", i, s)
	}
}

func TestHemisphereKernelBiasesTowardOrigin(t *testing.T) {
	k := HemisphereKernel(64)
	firstLen := math.Sqrt(k[0][0]*k[0][0] + k[0][1]*k[0][1] + k[0][2]*k[0][2])
	lastLen := math.Sqrt(k[63][0]*k[63][0] + k[63][1]*k[63][1] + k[63][2]*k[63][2])
	assert.Less(t, firstLen, lastLen)
}

func TestTiledRotationNoiseHas16UnitVectors(t *testing.T) {
	n := TiledRotationNoise()
	assert.Len(t, n, 16)
	for i, v := range n {
		length := math.Sqrt(v[0]*v[0] + v[1]*v[1])
		assert.InDeltaf(t, 1.0, length, 1e-9, "vector %d not unit length: %v", i, v)
	}
}

func TestTiledRotationNoiseVectorsAreDistinct(t *testing.T) {
	n := TiledRotationNoise()
	seen := make(map[[2]float64]bool)
	for _, v := range n {
		seen[v] = true
	}
	assert.Len(t, seen, 16)
}

func TestDefaultPostProcessConfigEnablesBloomAndSSAO(t *testing.T) {
	cfg := DefaultPostProcessConfig()
	assert.True(t, cfg.BloomEnabled)
	assert.True(t, cfg.SSAOEnabled)
	assert.Equal(t, 1.0, cfg.Exposure)
}
