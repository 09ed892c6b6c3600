package app

import (
	"math"

	"flint/internal/ecs"
	"flint/internal/mathutil"
	"flint/internal/physics"
)

// Ray is a point and a unit direction, used for editor picking.
type Ray struct {
	Origin    mathutil.Vec3
	Direction mathutil.Vec3
}

// PickRay reconstructs a world-space ray from normalized device
// coordinates (ndcX/ndcY in [-1,1]) by unprojecting clip-space
// coordinates through the inverse view-projection matrix to get a
// world-space direction, also carrying the camera eye as the ray
// origin since picking needs a full ray, not just a direction.
func PickRay(ndcX, ndcY float64, viewProj mathutil.Mat4, cameraPos mathutil.Vec3) Ray {
	inv, ok := viewProj.Inverse()
	if !ok {
		return Ray{Origin: cameraPos, Direction: mathutil.Vec3{X: 0, Y: 0, Z: -1}}
	}

	nearPoint := unprojectPoint(inv, ndcX, ndcY, -1)
	farPoint := unprojectPoint(inv, ndcX, ndcY, 1)
	dir := farPoint.Sub(nearPoint).Normalize()
	return Ray{Origin: cameraPos, Direction: dir}
}

// unprojectPoint transforms a clip-space point by invViewProj and
// performs the perspective divide; mathutil.Mat4.TransformPoint alone
// can't be used here since it assumes an affine (w=1 in, w=1 out)
// transform, but unprojecting through an inverse projection matrix
// produces a non-trivial w.
func unprojectPoint(m mathutil.Mat4, ndcX, ndcY, ndcZ float64) mathutil.Vec3 {
	x := m[0]*ndcX + m[4]*ndcY + m[8]*ndcZ + m[12]
	y := m[1]*ndcX + m[5]*ndcY + m[9]*ndcZ + m[13]
	z := m[2]*ndcX + m[6]*ndcY + m[10]*ndcZ + m[14]
	w := m[3]*ndcX + m[7]*ndcY + m[11]*ndcZ + m[15]
	if w == 0 {
		w = 1
	}
	return mathutil.Vec3{X: x / w, Y: y / w, Z: z / w}
}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max mathutil.Vec3
}

// AABBFromCenterExtents builds an AABB centered at center with the
// given positive half-extents.
func AABBFromCenterExtents(center, halfExtents mathutil.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// Intersect performs the standard slab-method ray/AABB test and
// returns the entry distance along the ray when hit (the exit distance
// when the ray origin is inside the box), following the
// usual cast-function shape (hit bool + contact data) a ray-plane or
// ray-sphere cast would use.
func (r Ray) Intersect(box AABB) (hit bool, dist float64) {
	tMin, tMax := math.Inf(-1), math.Inf(1)

	axes := [3]struct{ origin, dir, min, max float64 }{
		{r.Origin.X, r.Direction.X, box.Min.X, box.Max.X},
		{r.Origin.Y, r.Direction.Y, box.Min.Y, box.Max.Y},
		{r.Origin.Z, r.Direction.Z, box.Min.Z, box.Max.Z},
	}

	for _, a := range axes {
		if math.Abs(a.dir) < 1e-12 {
			if a.origin < a.min || a.origin > a.max {
				return false, 0
			}
			continue
		}
		invDir := 1.0 / a.dir
		t1 := (a.min - a.origin) * invDir
		t2 := (a.max - a.origin) * invDir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false, 0
		}
	}

	if tMax < 0 {
		return false, 0
	}
	if tMin < 0 {
		return true, tMax
	}
	return true, tMin
}

const defaultPickHalfExtent = 0.5

// EntityBounds returns an entity's world-space AABB: its collider's
// half-extents if the physics bridge has one tracked, or a small
// default box around its world position otherwise.
func EntityBounds(w *ecs.World, bridge *physics.Bridge, id ecs.EntityID) (AABB, bool) {
	m, ok := w.WorldMatrix(id)
	if !ok {
		return AABB{}, false
	}
	center := m.Translation()

	half := mathutil.Vec3{X: defaultPickHalfExtent, Y: defaultPickHalfExtent, Z: defaultPickHalfExtent}
	if bridge != nil {
		if c, ok := bridge.Collider(id); ok {
			switch c.Shape {
			case physics.ShapeBox:
				half = c.HalfExtents
			case physics.ShapeSphere:
				half = mathutil.Vec3{X: c.Radius, Y: c.Radius, Z: c.Radius}
			case physics.ShapeCapsule:
				half = mathutil.Vec3{X: c.Radius, Y: c.HalfHeight + c.Radius, Z: c.Radius}
			}
		}
	}
	return AABBFromCenterExtents(center, half), true
}

// PickResult is the nearest entity a ray hit, if any.
type PickResult struct {
	Entity   ecs.EntityID
	Distance float64
}

// Pick tests a ray against every entity's bounds and returns the
// closest hit.
func Pick(w *ecs.World, bridge *physics.Bridge, r Ray) (PickResult, bool) {
	best := PickResult{}
	found := false

	for _, id := range w.AllEntities() {
		box, ok := EntityBounds(w, bridge, id)
		if !ok {
			continue
		}
		hit, dist := r.Intersect(box)
		if !hit {
			continue
		}
		if !found || dist < best.Distance {
			best = PickResult{Entity: id, Distance: dist}
			found = true
		}
	}
	return best, found
}
