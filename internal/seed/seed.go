package seed

import (
	"math"

	"constella/orrery/internal/geom"
)

// FNV-1a 32-bit. Inlined rather than hash/fnv so the exact constants
// are visible next to the float mapping that depends on them, and so
// hashing a seed string never allocates.
const (
	fnvOffset uint32 = 0x811c9dc5
	fnvPrime  uint32 = 0x01000193
)

// Hash returns the FNV-1a hash of s.
func Hash(s string) uint32 {
	h := fnvOffset
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

// UnitFloat maps s to a float in [0,1]. The sign bit is masked off
// before dividing so the full string space folds onto 31 bits.
func UnitFloat(s string) float64 {
	return float64(Hash(s)&0x7fffffff) / float64(0x7fffffff)
}

// SpherePoint maps s to a point on the sphere of the given radius,
// uniformly distributed over the surface. Two independent draws feed
// the azimuth and the polar angle; the arccos transform on the polar
// draw corrects for the pole-ward crowding a linear angle would cause.
func SpherePoint(s string, radius float64) geom.Vec3 {
	azimuth := UnitFloat(s) * 2 * math.Pi
	polar := math.Acos(2*UnitFloat(s+"_p") - 1)

	sinPolar := math.Sin(polar)
	return geom.Vec3{
		X: radius * sinPolar * math.Cos(azimuth),
		Y: radius * math.Cos(polar),
		Z: radius * sinPolar * math.Sin(azimuth),
	}
}
