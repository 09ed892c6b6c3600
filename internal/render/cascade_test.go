package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flint/internal/mathutil"
)

func TestUpdateCascadesIsDeterministic(t *testing.T) {
	cfg := DefaultCascadeConfig()
	view := mathutil.LookAt(mathutil.Vec3{X: 0, Y: 5, Z: 10}, mathutil.Zero, mathutil.Up)
	lightDir := mathutil.Vec3{X: -0.3, Y: -0.8, Z: -0.2}

	a := UpdateCascades(cfg, view, mathutil.DegToRad(60), 16.0/9.0, 0.1, 100, lightDir)
	b := UpdateCascades(cfg, view, mathutil.DegToRad(60), 16.0/9.0, 0.1, 100, lightDir)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ViewProj, b[i].ViewProj, "cascade %d matrices must be byte-equal across identical calls", i)
		assert.Equal(t, a[i].Near, b[i].Near)
		assert.Equal(t, a[i].Far, b[i].Far)
	}
}

func TestSplitDistancesAreMonotonicAndBounded(t *testing.T) {
	cfg := DefaultCascadeConfig()
	splits := SplitDistances(cfg, 0.1, 100)

	require.Len(t, splits, cfg.Count+1)
	assert.Equal(t, 0.1, splits[0])
	assert.InDelta(t, 100.0, splits[len(splits)-1], 1e-9)
	for i := 1; i < len(splits); i++ {
		assert.Greater(t, splits[i], splits[i-1])
	}
}

func TestCascadeCountMatchesConfig(t *testing.T) {
	cfg := CascadeConfig{Count: 3, Lambda: 0.5, TexelsWide: 1024}
	view := mathutil.LookAt(mathutil.Vec3{X: 0, Y: 2, Z: 5}, mathutil.Zero, mathutil.Up)

	cascades := UpdateCascades(cfg, view, mathutil.DegToRad(50), 1.5, 0.1, 50, mathutil.Vec3{X: 0, Y: -1, Z: 0})

	assert.Len(t, cascades, 3)
}
