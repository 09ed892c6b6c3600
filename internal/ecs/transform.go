package ecs

import "flint/internal/mathutil"

// Transform is the decoded form of a "transform" component: position,
// rotation (Euler degrees, ZYX order, or an explicit quaternion override),
// and scale.
type Transform struct {
	Position Vec3
	Euler    Vec3 // degrees, applied ZYX
	Quat     *mathutil.Quat
	Scale    Vec3
}

// Vec3 is an alias of mathutil.Vec3, so callers can use either name.
type Vec3 = mathutil.Vec3

func DefaultTransform() Transform {
	return Transform{
		Position: mathutil.Zero,
		Euler:    mathutil.Zero,
		Scale:    mathutil.One,
	}
}

// Matrix composes the local transform into a 4x4 TRS matrix. An explicit
// quaternion override (decoded from a "quaternion" field) takes precedence
// over the Euler fields.
func (t Transform) Matrix() mathutil.Mat4 {
	rot := t.Quat
	if rot == nil {
		q := mathutil.QuatFromEulerZYXDeg(t.Euler)
		rot = &q
	}
	return mathutil.TRS(t.Position, *rot, t.Scale)
}

// DecodeTransform reads a transform component Value into a Transform,
// defaulting any missing field (position=0, rotation=0, scale=1). A
// "quaternion" field, if present, overrides "rotation".
func DecodeTransform(v Value) Transform {
	t := DefaultTransform()

	table, ok := v.Table()
	if !ok {
		return t
	}

	if pos, ok := table.Get("position"); ok {
		t.Position = decodeVec3(pos, mathutil.Zero)
	}
	if scale, ok := table.Get("scale"); ok {
		t.Scale = decodeVec3(scale, mathutil.One)
	}
	if rot, ok := table.Get("rotation"); ok {
		t.Euler = decodeVec3(rot, mathutil.Zero)
	}
	if quat, ok := table.Get("quaternion"); ok {
		if arr, isArr := quat.Array(); isArr && len(arr) == 4 {
			x, _ := arr[0].Float()
			y, _ := arr[1].Float()
			z, _ := arr[2].Float()
			w, _ := arr[3].Float()
			q := mathutil.Quat{X: x, Y: y, Z: z, W: w}
			t.Quat = &q
		}
	}

	return t
}

// EncodeTransform writes t back into a component Value, used by the
// gizmo when it moves an entity. Only the rotation representation actually in use is
// emitted: an explicit quaternion if set, Euler degrees otherwise.
func EncodeTransform(t Transform) Value {
	table := NewTable()
	table.Set("position", encodeVec3(t.Position))
	table.Set("scale", encodeVec3(t.Scale))
	if t.Quat != nil {
		table.Set("quaternion", Array(Float(t.Quat.X), Float(t.Quat.Y), Float(t.Quat.Z), Float(t.Quat.W)))
	} else {
		table.Set("rotation", encodeVec3(t.Euler))
	}
	return FromTable(table)
}

func decodeVec3(v Value, fallback mathutil.Vec3) mathutil.Vec3 {
	arr, ok := v.Array()
	if !ok || len(arr) != 3 {
		return fallback
	}
	x, _ := arr[0].Float()
	y, _ := arr[1].Float()
	z, _ := arr[2].Float()
	return mathutil.Vec3{X: x, Y: y, Z: z}
}

func encodeVec3(v mathutil.Vec3) Value {
	return Array(Float(v.X), Float(v.Y), Float(v.Z))
}
