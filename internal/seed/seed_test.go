package seed

import (
	"fmt"
	"math"
	"testing"
)

func TestHashKnownVectors(t *testing.T) {
	// Reference FNV-1a 32-bit values.
	cases := []struct {
		in   string
		want uint32
	}{
		{"", 0x811c9dc5},
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	}
	for _, c := range cases {
		if got := Hash(c.in); got != c.want {
			t.Errorf("Hash(%q) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestHashDeterministic(t *testing.T) {
	for _, s := range []string{"", "x", "m:abc:3:1:a,b,c:42:t1", "nh:0:12345:t1"} {
		if Hash(s) != Hash(s) {
			t.Errorf("Hash(%q) not stable", s)
		}
	}
}

func TestUnitFloatRange(t *testing.T) {
	sum := 0.0
	n := 4096
	for i := 0; i < n; i++ {
		f := UnitFloat(fmt.Sprintf("sample:%d", i))
		if f < 0 || f > 1 {
			t.Fatalf("UnitFloat out of range: %v", f)
		}
		sum += f
	}
	mean := sum / float64(n)
	if math.Abs(mean-0.5) > 0.05 {
		t.Errorf("UnitFloat mean = %v, want near 0.5", mean)
	}
}

func TestSpherePointOnSurface(t *testing.T) {
	for i := 0; i < 100; i++ {
		p := SpherePoint(fmt.Sprintf("s:%d", i), 25)
		if math.Abs(p.Length()-25) > 1e-9 {
			t.Fatalf("SpherePoint radius = %v, want 25", p.Length())
		}
	}
	if p := SpherePoint("origin", 0); p.Length() != 0 {
		t.Errorf("zero radius should map to origin, got %v", p)
	}
}

func TestSpherePointUniform(t *testing.T) {
	// The acos transform should spread points evenly between the poles
	// and the equator: for a uniform sphere E[|y|/r] = 0.5, and the
	// hemispheres should hold equal shares.
	n := 2000
	above := 0
	absY := 0.0
	for i := 0; i < n; i++ {
		p := SpherePoint(fmt.Sprintf("u:%d", i), 1)
		if p.Y > 0 {
			above++
		}
		absY += math.Abs(p.Y)
	}
	if frac := float64(above) / float64(n); frac < 0.4 || frac > 0.6 {
		t.Errorf("upper hemisphere fraction = %v, want near 0.5", frac)
	}
	if mean := absY / float64(n); math.Abs(mean-0.5) > 0.07 {
		t.Errorf("mean |y| = %v, want near 0.5", mean)
	}
}

func TestSpherePointDistinctSeeds(t *testing.T) {
	a := SpherePoint("alpha", 10)
	b := SpherePoint("beta", 10)
	if a == b {
		t.Error("distinct seeds mapped to the same point")
	}
}
