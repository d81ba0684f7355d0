package forcesim

import (
	"math"
	"math/rand"

	"constella/orrery/internal/geom"
	"constella/orrery/internal/graph"
)

// Params configures the force simulation. Zero fields fall back to
// defaults, so callers override only what they need.
type Params struct {
	Rounds      int     `yaml:"rounds"`
	MinRounds   int     `yaml:"min_rounds"`
	Repulsion   float64 `yaml:"repulsion"`
	Spring      float64 `yaml:"spring"`
	Damping     float64 `yaml:"damping"`
	Cooling     float64 `yaml:"cooling"`
	ExactLimit  int     `yaml:"exact_limit"`
	CutoffFrac  float64 `yaml:"cutoff_frac"`
	Convergence float64 `yaml:"convergence"`
	Seed        int64   `yaml:"seed"`
}

// DefaultParams returns sensible defaults
func DefaultParams() Params {
	return Params{
		Rounds:      150,
		MinRounds:   20,
		Repulsion:   1200,
		Spring:      0.02,
		Damping:     0.85,
		Cooling:     0.96,
		ExactLimit:  500,
		CutoffFrac:  0.6,
		Convergence: 0.05,
		Seed:        42,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Rounds == 0 {
		p.Rounds = d.Rounds
	}
	if p.MinRounds == 0 {
		p.MinRounds = d.MinRounds
	}
	if p.Repulsion == 0 {
		p.Repulsion = d.Repulsion
	}
	if p.Spring == 0 {
		p.Spring = d.Spring
	}
	if p.Damping == 0 {
		p.Damping = d.Damping
	}
	if p.Cooling == 0 {
		p.Cooling = d.Cooling
	}
	if p.ExactLimit == 0 {
		p.ExactLimit = d.ExactLimit
	}
	if p.CutoffFrac == 0 {
		p.CutoffFrac = d.CutoffFrac
	}
	if p.Convergence == 0 {
		p.Convergence = d.Convergence
	}
	if p.Seed == 0 {
		p.Seed = d.Seed
	}
	return p
}

type spring struct {
	a, b     int
	strength float64
}

// Run computes a Fruchterman-Reingold reference layout for the
// snapshot: random start inside a sphere, pairwise repulsion,
// log-weighted springs per interacting pair, damped integration under
// a cooling displacement cap. The result is rescaled so the maximum
// radius matches targetRadius. Deterministic for a fixed snapshot and
// seed (math/rand with a fixed source, not crypto randomness).
//
// This layout never reaches the renderer; it exists so the codec's
// output can be measured against a structure-driven baseline.
func Run(snap *graph.Snapshot, targetRadius float64, p Params) map[string]geom.Vec3 {
	p = p.withDefaults()
	ids := snap.MemberIDs()
	n := len(ids)
	result := make(map[string]geom.Vec3, n)
	if n == 0 {
		return result
	}

	rng := rand.New(rand.NewSource(p.Seed))
	pos := make([]geom.Vec3, n)
	vel := make([]geom.Vec3, n)
	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
		pos[i] = randomInSphere(rng, targetRadius)
	}

	var springs []spring
	for _, key := range snap.PairKeys() {
		ai, ok := index[key.A]
		if !ok {
			continue
		}
		bi, ok := index[key.B]
		if !ok {
			continue
		}
		springs = append(springs, spring{
			a: ai, b: bi,
			strength: math.Log2(1 + float64(snap.Pairs[key])),
		})
	}

	// Above ExactLimit, pairs beyond the cutoff contribute too little
	// repulsion to pay O(N²) for; skip them.
	exact := n < p.ExactLimit
	cutoffSq := targetRadius * p.CutoffFrac
	cutoffSq *= cutoffSq
	temperature := targetRadius / 4

	for round := 0; round < p.Rounds; round++ {
		for i := range vel {
			vel[i] = geom.Vec3{}
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				delta := pos[i].Sub(pos[j])
				distSq := delta.LengthSq()
				if !exact && distSq > cutoffSq {
					continue
				}
				if distSq < 1e-6 {
					// Coincident points get a deterministic nudge so
					// repulsion has a direction to work with.
					delta = geom.Vec3{X: float64(i-j) * 1e-3}
					distSq = delta.LengthSq()
				}
				dist := math.Sqrt(distSq)
				f := p.Repulsion / distSq
				dir := delta.Scale(1 / dist)
				vel[i] = vel[i].Add(dir.Scale(f))
				vel[j] = vel[j].Sub(dir.Scale(f))
			}
		}

		for _, s := range springs {
			delta := pos[s.b].Sub(pos[s.a])
			dist := delta.Length()
			if dist < 1 {
				dist = 1
			}
			f := dist * p.Spring * s.strength
			dir := delta.Scale(1 / dist)
			vel[s.a] = vel[s.a].Add(dir.Scale(f))
			vel[s.b] = vel[s.b].Sub(dir.Scale(f))
		}

		var moved float64
		for i := 0; i < n; i++ {
			v := vel[i].Scale(p.Damping)
			if disp := v.Length(); disp > temperature {
				v = v.Scale(temperature / disp)
			}
			pos[i] = pos[i].Add(v)
			moved += v.Length()
		}
		temperature *= p.Cooling

		if round+1 >= p.MinRounds && moved/float64(n) < p.Convergence {
			break
		}
	}

	maxR := 0.0
	for i := range pos {
		if r := pos[i].Length(); r > maxR {
			maxR = r
		}
	}
	if maxR > 0 {
		scale := targetRadius / maxR
		for i := range pos {
			pos[i] = pos[i].Scale(scale)
		}
	}

	for i, id := range ids {
		result[id] = pos[i]
	}
	return result
}

func randomInSphere(rng *rand.Rand, radius float64) geom.Vec3 {
	for {
		v := geom.Vec3{
			X: rng.Float64()*2 - 1,
			Y: rng.Float64()*2 - 1,
			Z: rng.Float64()*2 - 1,
		}
		if v.LengthSq() <= 1 {
			return v.Scale(radius)
		}
	}
}
