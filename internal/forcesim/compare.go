package forcesim

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"constella/orrery/internal/geom"
	"constella/orrery/internal/graph"
)

// Comparison quantifies how closely one layout tracks another:
// per-member positional error, and R² of interacting-pair distances
// (how much of the reference's pairwise structure the layout
// explains). Members or pairs missing a position on either side are
// skipped.
type Comparison struct {
	Nodes       int     `json:"nodes"`
	Pairs       int     `json:"pairs"`
	MeanError   float64 `json:"mean_error"`
	MedianError float64 `json:"median_error"`
	MaxError    float64 `json:"max_error"`
	RSquared    float64 `json:"r_squared"`
}

// Compare measures layout against reference over the snapshot's
// members and interaction pairs.
func Compare(snap *graph.Snapshot, layout, reference map[string]geom.Vec3) Comparison {
	var errs []float64
	for _, id := range snap.MemberIDs() {
		a, ok := layout[id]
		if !ok {
			continue
		}
		b, ok := reference[id]
		if !ok {
			continue
		}
		errs = append(errs, a.Distance(b))
	}

	cmp := Comparison{Nodes: len(errs)}
	if len(errs) > 0 {
		cmp.MeanError = stat.Mean(errs, nil)
		sorted := append([]float64(nil), errs...)
		sort.Float64s(sorted)
		cmp.MedianError = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		cmp.MaxError = sorted[len(sorted)-1]
	}

	var estimates, values []float64
	for _, key := range snap.PairKeys() {
		la, ok := layout[key.A]
		if !ok {
			continue
		}
		lb, ok := layout[key.B]
		if !ok {
			continue
		}
		ra, ok := reference[key.A]
		if !ok {
			continue
		}
		rb, ok := reference[key.B]
		if !ok {
			continue
		}
		estimates = append(estimates, la.Distance(lb))
		values = append(values, ra.Distance(rb))
	}
	cmp.Pairs = len(estimates)
	// R² needs spread in the reference distances; a degenerate set
	// (every pair equally far apart) would divide by zero.
	if len(estimates) >= 2 && stat.Variance(values, nil) > 0 {
		cmp.RSquared = stat.RSquaredFrom(estimates, values, nil)
	}
	return cmp
}
