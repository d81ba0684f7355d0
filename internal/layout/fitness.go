package layout

import (
	"math"
	"sort"

	"constella/orrery/internal/geom"
	"constella/orrery/internal/graph"
)

// Score bundles the fitness components of one candidate layout. Both
// components lie in (0,1], so fitness does too when the weights sum
// to 1.
type Score struct {
	Cohesion  float64 `json:"cohesion"`
	Stability float64 `json:"stability"`
	Fitness   float64 `json:"fitness"`
}

// Cohesion rewards layouts that keep interacting pairs close. Each
// pair is weighted by the log of its comment count, so a chatty pair
// counts more than a one-off reply but not overwhelmingly so. Pairs
// with a missing position are skipped, not counted; with no scorable
// pairs at all the score is vacuously perfect.
func Cohesion(snap *graph.Snapshot, positions map[string]geom.Vec3, p Params) float64 {
	var weighted, totalWeight float64
	for _, pair := range snap.PairKeys() {
		pa, ok := positions[pair.A]
		if !ok {
			continue
		}
		pb, ok := positions[pair.B]
		if !ok {
			continue
		}
		w := math.Log(1+float64(snap.Pairs[pair])) * p.PairGravityScale
		weighted += pa.Distance(pb) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 1
	}
	return 1 / (1 + (weighted/totalWeight)*p.CohesionScale)
}

// Stability penalizes drift from the previously accepted layout,
// measured as mean displacement over members present in both. With no
// previous layout there is nothing to drift from and the score is 1.
func Stability(previous, candidate map[string]geom.Vec3, p Params) float64 {
	if len(previous) == 0 || len(candidate) == 0 {
		return 1
	}
	ids := make([]string, 0, len(candidate))
	for id := range candidate {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var drift float64
	n := 0
	for _, id := range ids {
		prev, ok := previous[id]
		if !ok {
			continue
		}
		drift += candidate[id].Distance(prev)
		n++
	}
	if n == 0 {
		return 1
	}
	return 1 / (1 + (drift/float64(n))*p.StabilityScale)
}

// Evaluate scores a candidate layout against the snapshot and the
// previously accepted layout.
func Evaluate(snap *graph.Snapshot, candidate, previous map[string]geom.Vec3, p Params) Score {
	c := Cohesion(snap, candidate, p)
	s := Stability(previous, candidate, p)
	return Score{
		Cohesion:  c,
		Stability: s,
		Fitness:   c*p.CohesionWeight + s*p.StabilityWeight,
	}
}
