package geom

// Box is an axis-aligned bounding box. Both faces are inclusive, so a
// point on a shared boundary is contained by more than one adjacent
// box; callers that need exclusive ownership take the first match.
type Box struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// NewBox returns a cube centered on center with the given half-extent.
func NewBox(center Vec3, half float64) Box {
	h := Vec3{half, half, half}
	return Box{Min: center.Sub(h), Max: center.Add(h)}
}

func (b Box) Center() Vec3 {
	return Lerp(b.Min, b.Max, 0.5)
}

func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// LongestSide is the largest edge length, used as the box's nominal
// cell size when comparing against LOD granularity.
func (b Box) LongestSide() float64 {
	s := b.Size()
	longest := s.X
	if s.Y > longest {
		longest = s.Y
	}
	if s.Z > longest {
		longest = s.Z
	}
	return longest
}

func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// IntersectsSphere reports whether any point of the box lies within
// radius of center, via the closest-point-on-box distance.
func (b Box) IntersectsSphere(center Vec3, radius float64) bool {
	closest := Vec3{
		X: clamp(center.X, b.Min.X, b.Max.X),
		Y: clamp(center.Y, b.Min.Y, b.Max.Y),
		Z: clamp(center.Z, b.Min.Z, b.Max.Z),
	}
	return closest.DistanceSq(center) <= radius*radius
}

// Octant returns one of the eight equal sub-boxes. Bit 0 of i selects
// the high X half, bit 1 the high Y half, bit 2 the high Z half.
func (b Box) Octant(i int) Box {
	c := b.Center()
	o := Box{Min: b.Min, Max: c}
	if i&1 != 0 {
		o.Min.X, o.Max.X = c.X, b.Max.X
	}
	if i&2 != 0 {
		o.Min.Y, o.Max.Y = c.Y, b.Max.Y
	}
	if i&4 != 0 {
		o.Min.Z, o.Max.Z = c.Z, b.Max.Z
	}
	return o
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
