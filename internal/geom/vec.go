package geom

import "math"

// Vec3 is a point or direction in world space. Y is the vertical axis.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) LengthSq() float64 {
	return v.Dot(v)
}

func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

func (v Vec3) DistanceSq(o Vec3) float64 {
	return v.Sub(o).LengthSq()
}

// Normalized returns the unit vector in v's direction, or the zero
// vector when v has no length.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// HorizontalRadius is the distance from the vertical axis.
func (v Vec3) HorizontalRadius() float64 {
	return math.Sqrt(v.X*v.X + v.Z*v.Z)
}

// HorizontalAngle is the azimuth around the vertical axis in radians.
func (v Vec3) HorizontalAngle() float64 {
	return math.Atan2(v.Z, v.X)
}

// Lerp interpolates from a to b by t in [0,1].
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}
