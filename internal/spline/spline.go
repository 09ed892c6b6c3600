// Package spline implements Flint's procedural spline geometry: an arc-length sampler over a Catmull-Rom control curve, and a
// rectangular cross-section sweep that emits a dual-purpose vertex
// stream (a shaded render mesh and a flat trimesh for the physics
// world).
//
// SplineSample carries position/forward/right/up/twist per sample, fed
// through a per-segment four-quad-face sweep. The arc-length sampler
// walks a Catmull-Rom-through-control-points curve rather than a
// straight-segment polyline, since control points are meant to be
// "control points" of a smooth curve, not a corner-to-corner path.
package spline

import (
	"flint/internal/mathutil"
)

type ControlPoint struct {
	Position mathutil.Vec3
	Twist    float64 // degrees
}

// Definition is a parsed spline file.
type Definition struct {
	Closed       bool
	Spacing      float64
	ControlPoints []ControlPoint
}

// Sample is one arc-length-indexed point along the curve, carrying a
// local frame and twist.
type Sample struct {
	Position mathutil.Vec3
	Forward  mathutil.Vec3
	Right    mathutil.Vec3
	Up       mathutil.Vec3
	Twist    float64
	T        float64 // normalized arc-length position in [0,1]
}

const minSpacing = 1e-4

func vec3From(a [3]float64) mathutil.Vec3 {
	return mathutil.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// Sample walks the control-point curve and emits arc-length-spaced
// samples, closed or open per def.Closed.
func (def Definition) Sample() []Sample {
	if len(def.ControlPoints) < 2 {
		return nil
	}
	spacing := def.Spacing
	if spacing < minSpacing {
		spacing = minSpacing
	}

	curve := newCatmullRom(def.ControlPoints, def.Closed)
	total := curve.length()
	if total < minSpacing {
		return nil
	}

	n := int(total/spacing + 0.5)
	if n < 1 {
		n = 1
	}

	var samples []Sample
	if def.Closed {
		samples = make([]Sample, n)
		for i := 0; i < n; i++ {
			dist := total * float64(i) / float64(n)
			samples[i] = curve.sampleAtDistance(dist, total, float64(i)/float64(n))
		}
	} else {
		samples = make([]Sample, n+1)
		for i := 0; i <= n; i++ {
			dist := total * float64(i) / float64(n)
			samples[i] = curve.sampleAtDistance(dist, total, float64(i)/float64(n))
		}
	}
	return samples
}
