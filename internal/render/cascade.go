package render

import (
	"math"

	"flint/internal/mathutil"
)

// CascadeConfig controls shadow cascade splitting.
type CascadeConfig struct {
	Count       int
	Lambda      float64 // blend between logarithmic and uniform splits
	TexelsWide  int      // shadow map resolution per cascade, for texel snapping
}

func DefaultCascadeConfig() CascadeConfig {
	return CascadeConfig{Count: 4, Lambda: 0.5, TexelsWide: 2048}
}

// Cascade is one shadow cascade's depth range and light-space
// view-projection matrix.
type Cascade struct {
	Near, Far float64
	ViewProj  mathutil.Mat4
}

// SplitDistances computes per-cascade near/far distances blending a
// logarithmic and a uniform split scheme by cfg.Lambda.
func SplitDistances(cfg CascadeConfig, near, far float64) []float64 {
	n := cfg.Count
	splits := make([]float64, n+1)
	splits[0] = near
	ratio := far / near
	for i := 1; i <= n; i++ {
		p := float64(i) / float64(n)
		log := near * math.Pow(ratio, p)
		uniform := near + (far-near)*p
		splits[i] = cfg.Lambda*log + (1-cfg.Lambda)*uniform
	}
	return splits
}

// frustumCorners returns the 8 corners of the view frustum slice between
// nearD and farD, in world space. cameraView is the camera's view matrix;
// its inverse carries camera-space corners (built directly from FOV/
// aspect) into world space.
func frustumCorners(cameraView mathutil.Mat4, nearD, farD, fovY, aspect float64) [8]mathutil.Vec3 {
	invView, _ := cameraView.Inverse()

	tanHalfFovY := math.Tan(fovY / 2)
	nearHeight := tanHalfFovY * nearD
	nearWidth := nearHeight * aspect
	farHeight := tanHalfFovY * farD
	farWidth := farHeight * aspect

	local := [8]mathutil.Vec3{
		{X: -nearWidth, Y: -nearHeight, Z: -nearD},
		{X: nearWidth, Y: -nearHeight, Z: -nearD},
		{X: nearWidth, Y: nearHeight, Z: -nearD},
		{X: -nearWidth, Y: nearHeight, Z: -nearD},
		{X: -farWidth, Y: -farHeight, Z: -farD},
		{X: farWidth, Y: -farHeight, Z: -farD},
		{X: farWidth, Y: farHeight, Z: -farD},
		{X: -farWidth, Y: farHeight, Z: -farD},
	}

	var out [8]mathutil.Vec3
	for i, c := range local {
		out[i] = invView.TransformPoint(c)
	}
	return out
}

// UpdateCascades projects the camera frustum into world space per split,
// derives a tight orthographic light view-projection, and snaps the
// result to texel boundaries so the shadow doesn't swim as the camera
// moves. Deterministic: identical inputs produce
// byte-identical matrices.
func UpdateCascades(cfg CascadeConfig, cameraView mathutil.Mat4, fovY, aspect, near, far float64, lightDir mathutil.Vec3) []Cascade {
	splits := SplitDistances(cfg, near, far)
	cascades := make([]Cascade, cfg.Count)

	lightDir = lightDir.Normalize()
	lightUp := mathutil.Up
	if math.Abs(lightDir.Dot(lightUp)) > 0.999 {
		lightUp = mathutil.Vec3{X: 1, Y: 0, Z: 0}
	}

	for i := 0; i < cfg.Count; i++ {
		corners := frustumCorners(cameraView, splits[i], splits[i+1], fovY, aspect)

		center := mathutil.Zero
		for _, c := range corners {
			center = center.Add(c)
		}
		center = center.Scale(1.0 / 8.0)

		lightEye := center.Sub(lightDir.Scale(1))
		lightView := mathutil.LookAt(lightEye, center, lightUp)

		var minX, maxX, minY, maxY, minZ, maxZ float64
		for j, c := range corners {
			p := lightView.TransformPoint(c)
			if j == 0 {
				minX, maxX, minY, maxY, minZ, maxZ = p.X, p.X, p.Y, p.Y, p.Z, p.Z
				continue
			}
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
		}

		texelsWide := float64(cfg.TexelsWide)
		worldUnitsPerTexel := (maxX - minX) / texelsWide
		if worldUnitsPerTexel > 1e-9 {
			minX = math.Floor(minX/worldUnitsPerTexel) * worldUnitsPerTexel
			maxX = math.Floor(maxX/worldUnitsPerTexel) * worldUnitsPerTexel
		}
		worldUnitsPerTexelY := (maxY - minY) / texelsWide
		if worldUnitsPerTexelY > 1e-9 {
			minY = math.Floor(minY/worldUnitsPerTexelY) * worldUnitsPerTexelY
			maxY = math.Floor(maxY/worldUnitsPerTexelY) * worldUnitsPerTexelY
		}

		lightProj := mathutil.Orthographic(minX, maxX, minY, maxY, -maxZ-1, -minZ+1)
		cascades[i] = Cascade{Near: splits[i], Far: splits[i+1], ViewProj: lightProj.Mul(lightView)}
	}

	return cascades
}
