package spline

import "flint/internal/mathutil"

// Vertex is one render-mesh vertex: position, face normal, vertex
// color, and a UV that runs across the cross-section width (0..1) and
// along the path length.
type Vertex struct {
	Position mathutil.Vec3
	Normal   mathutil.Vec3
	Color    [4]float64
	U, V     float64
}

// RenderMesh is the shaded, per-face vertex stream for the renderer.
type RenderMesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// PhysicsMesh is the flat triangle list handed to the physics world to
// build a static trimesh collider.
type PhysicsMesh struct {
	Vertices []mathutil.Vec3
	Triangles [][3]uint32
}

// CrossSectionConfig controls the rectangular profile swept along the
// spline samples.
type CrossSectionConfig struct {
	Width, Height   float64
	OffsetRight, OffsetUp float64
	Color           [4]float64
}

type corners struct {
	bl, br, tr, tl mathutil.Vec3
}

func cornersAt(s Sample, cfg CrossSectionConfig) corners {
	hw := cfg.Width / 2
	hh := cfg.Height / 2
	center := s.Position.Add(s.Right.Scale(cfg.OffsetRight)).Add(s.Up.Scale(cfg.OffsetUp))
	return corners{
		bl: center.Add(s.Right.Scale(-hw)).Add(s.Up.Scale(-hh)),
		br: center.Add(s.Right.Scale(hw)).Add(s.Up.Scale(-hh)),
		tr: center.Add(s.Right.Scale(hw)).Add(s.Up.Scale(hh)),
		tl: center.Add(s.Right.Scale(-hw)).Add(s.Up.Scale(hh)),
	}
}

// Sweep sweeps cfg's rectangular cross-section along samples, emitting
// the same geometry twice: once as a shaded RenderMesh (four quad faces
// per longitudinal segment, per-face normals, end caps for open
// splines) and once as a flat PhysicsMesh trimesh.
func Sweep(samples []Sample, closed bool, cfg CrossSectionConfig) (RenderMesh, PhysicsMesh) {
	n := len(samples)
	if n < 2 {
		return RenderMesh{}, PhysicsMesh{}
	}

	cornerAt := make([]corners, n)
	for i, s := range samples {
		cornerAt[i] = cornersAt(s, cfg)
	}

	numSegs := n
	if !closed {
		numSegs = n - 1
	}

	var mesh RenderMesh
	var phys PhysicsMesh

	addQuad := func(a, b, c, d mathutil.Vec3, normal mathutil.Vec3, u0, u1 float64) {
		base := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices,
			Vertex{Position: a, Normal: normal, Color: cfg.Color, U: 0, V: u0},
			Vertex{Position: b, Normal: normal, Color: cfg.Color, U: 1, V: u0},
			Vertex{Position: c, Normal: normal, Color: cfg.Color, U: 0, V: u1},
			Vertex{Position: d, Normal: normal, Color: cfg.Color, U: 1, V: u1},
		)
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base+1, base+3, base+2)

		pb := uint32(len(phys.Vertices))
		phys.Vertices = append(phys.Vertices, a, b, c, d)
		phys.Triangles = append(phys.Triangles,
			[3]uint32{pb, pb + 1, pb + 2},
			[3]uint32{pb + 1, pb + 3, pb + 2},
		)
	}

	for seg := 0; seg < numSegs; seg++ {
		next := seg + 1
		if closed {
			next = (seg + 1) % n
		}
		cur := cornerAt[seg]
		nxt := cornerAt[next]
		u0 := float64(seg) / float64(numSegs)
		u1 := float64(seg+1) / float64(numSegs)

		topNormal := samples[seg].Up.Add(samples[next].Up).Scale(0.5).Normalize()
		addQuad(cur.tl, cur.tr, nxt.tl, nxt.tr, topNormal, u0, u1)

		botNormal := samples[seg].Up.Add(samples[next].Up).Scale(-0.5).Normalize()
		addQuad(cur.br, cur.bl, nxt.br, nxt.bl, botNormal, u0, u1)

		leftNormal := samples[seg].Right.Add(samples[next].Right).Scale(-0.5).Normalize()
		addQuad(cur.bl, cur.tl, nxt.bl, nxt.tl, leftNormal, u0, u1)

		rightNormal := samples[seg].Right.Add(samples[next].Right).Scale(0.5).Normalize()
		addQuad(cur.tr, cur.br, nxt.tr, nxt.br, rightNormal, u0, u1)
	}

	if !closed {
		frontNormal := samples[0].Forward.Scale(-1)
		c := cornerAt[0]
		base := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices,
			Vertex{Position: c.bl, Normal: frontNormal, Color: cfg.Color, U: 0, V: 0},
			Vertex{Position: c.br, Normal: frontNormal, Color: cfg.Color, U: 1, V: 0},
			Vertex{Position: c.tr, Normal: frontNormal, Color: cfg.Color, U: 1, V: 1},
			Vertex{Position: c.tl, Normal: frontNormal, Color: cfg.Color, U: 0, V: 1},
		)
		mesh.Indices = append(mesh.Indices, base, base+2, base+1, base, base+3, base+2)
		pb := uint32(len(phys.Vertices))
		phys.Vertices = append(phys.Vertices, c.bl, c.br, c.tr, c.tl)
		phys.Triangles = append(phys.Triangles, [3]uint32{pb, pb + 2, pb + 1}, [3]uint32{pb, pb + 3, pb + 2})

		last := n - 1
		backNormal := samples[last].Forward
		c = cornerAt[last]
		base = uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices,
			Vertex{Position: c.bl, Normal: backNormal, Color: cfg.Color, U: 0, V: 0},
			Vertex{Position: c.br, Normal: backNormal, Color: cfg.Color, U: 1, V: 0},
			Vertex{Position: c.tr, Normal: backNormal, Color: cfg.Color, U: 1, V: 1},
			Vertex{Position: c.tl, Normal: backNormal, Color: cfg.Color, U: 0, V: 1},
		)
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
		pb = uint32(len(phys.Vertices))
		phys.Vertices = append(phys.Vertices, c.bl, c.br, c.tr, c.tl)
		phys.Triangles = append(phys.Triangles, [3]uint32{pb, pb + 1, pb + 2}, [3]uint32{pb, pb + 2, pb + 3})
	}

	return mesh, phys
}
