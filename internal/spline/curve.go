package spline

import "flint/internal/mathutil"

const subdivisionsPerSegment = 24

type tableEntry struct {
	dist float64
	pos  mathutil.Vec3
	seg  int
	u    float64 // local parameter within the segment, [0,1]
}

type catmullRom struct {
	points []mathutil.Vec3
	twists []float64
	closed bool
	table  []tableEntry
}

func newCatmullRom(cps []ControlPoint, closed bool) *catmullRom {
	c := &catmullRom{closed: closed}
	for _, p := range cps {
		c.points = append(c.points, p.Position)
		c.twists = append(c.twists, p.Twist)
	}
	c.buildTable()
	return c
}

// segmentCount is the number of curve segments: n for a closed loop
// (wrapping the last point back to the first), n-1 for an open path.
func (c *catmullRom) segmentCount() int {
	if c.closed {
		return len(c.points)
	}
	return len(c.points) - 1
}

// neighbors returns the four Catmull-Rom control points for segment i
// (which runs from points[i] to points[i+1]), wrapping indices for a
// closed loop and clamping (duplicating the endpoint) for an open one.
func (c *catmullRom) neighbors(seg int) (p0, p1, p2, p3 mathutil.Vec3) {
	n := len(c.points)
	idx := func(i int) mathutil.Vec3 {
		if c.closed {
			return c.points[((i%n)+n)%n]
		}
		if i < 0 {
			return c.points[0]
		}
		if i >= n {
			return c.points[n-1]
		}
		return c.points[i]
	}
	return idx(seg - 1), idx(seg), idx(seg + 1), idx(seg + 2)
}

func catmullRomPoint(p0, p1, p2, p3 mathutil.Vec3, u float64) mathutil.Vec3 {
	u2 := u * u
	u3 := u2 * u
	a := p1.Scale(2)
	b := p2.Sub(p0).Scale(u)
	cc := p0.Scale(2).Sub(p1.Scale(5)).Add(p2.Scale(4)).Sub(p3).Scale(u2)
	d := p1.Scale(3).Sub(p0).Sub(p2.Scale(3)).Add(p3).Scale(u3)
	return a.Add(b).Add(cc).Add(d).Scale(0.5)
}

func (c *catmullRom) buildTable() {
	segs := c.segmentCount()
	dist := 0.0
	prev := mathutil.Zero
	first := true
	for seg := 0; seg < segs; seg++ {
		p0, p1, p2, p3 := c.neighbors(seg)
		for step := 0; step <= subdivisionsPerSegment; step++ {
			if seg > 0 && step == 0 {
				continue // shares the previous segment's final sample
			}
			u := float64(step) / float64(subdivisionsPerSegment)
			pos := catmullRomPoint(p0, p1, p2, p3, u)
			if !first {
				dist += pos.Distance(prev)
			}
			first = false
			prev = pos
			c.table = append(c.table, tableEntry{dist: dist, pos: pos, seg: seg, u: u})
		}
	}
}

func (c *catmullRom) length() float64 {
	if len(c.table) == 0 {
		return 0
	}
	return c.table[len(c.table)-1].dist
}

// sampleAtDistance locates the table entries bracketing dist, linearly
// interpolates position and local frame, and derives a twist value from
// the originating control points.
func (c *catmullRom) sampleAtDistance(dist, total, tNorm float64) Sample {
	tbl := c.table
	if dist <= tbl[0].dist {
		return c.frameAt(0, 0, tNorm)
	}
	last := len(tbl) - 1
	if dist >= tbl[last].dist {
		return c.frameAt(last, 0, tNorm)
	}

	lo, hi := 0, last
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if tbl[mid].dist <= dist {
			lo = mid
		} else {
			hi = mid
		}
	}
	span := tbl[hi].dist - tbl[lo].dist
	frac := 0.0
	if span > 1e-12 {
		frac = (dist - tbl[lo].dist) / span
	}
	return c.frameAt(lo, frac, tNorm)
}

// frameAt builds a Sample at table index i (interpolated frac toward
// i+1), deriving forward via finite difference and a stable right/up
// basis, and twist by linear interpolation between the segment's
// bounding control points.
func (c *catmullRom) frameAt(i int, frac float64, tNorm float64) Sample {
	tbl := c.table
	j := i + 1
	if j > len(tbl)-1 {
		j = len(tbl) - 1
	}
	pos := tbl[i].pos.Lerp(tbl[j].pos, frac)

	behind := i
	if behind > 0 {
		behind--
	}
	ahead := j
	if ahead < len(tbl)-1 {
		ahead++
	}
	forward := tbl[ahead].pos.Sub(tbl[behind].pos)
	if forward.LengthSq() < 1e-18 {
		forward = mathutil.Vec3{X: 0, Y: 0, Z: 1}
	}
	forward = forward.Normalize()

	worldUp := mathutil.Up
	if absf(forward.Dot(worldUp)) > 0.999 {
		worldUp = mathutil.Vec3{X: 1, Y: 0, Z: 0}
	}
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward).Normalize()

	seg := tbl[i].seg
	segN := len(c.twists)
	a, b := seg, seg+1
	if c.closed {
		b = b % segN
	} else if b >= segN {
		b = segN - 1
	}
	localU := tbl[i].u + (tbl[j].u-tbl[i].u)*frac
	twist := c.twists[a] + (c.twists[b]-c.twists[a])*localU

	return Sample{Position: pos, Forward: forward, Right: right, Up: up, Twist: twist, T: tNorm}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
