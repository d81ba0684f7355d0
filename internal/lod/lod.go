package lod

import "fmt"

// Tier is one granularity level. A tier is entered while zooming out
// once distance reaches ThresholdIn, but only abandoned while zooming
// back in below ThresholdOut; the gap between the two is the
// hysteresis band that stops a camera hovering near one boundary from
// flickering between tiers. CellSize is the octree aggregation
// granularity to request while the tier is active; zero means
// individual entries.
type Tier struct {
	Name         string  `yaml:"name" json:"name"`
	ThresholdIn  float64 `yaml:"threshold_in" json:"threshold_in"`
	ThresholdOut float64 `yaml:"threshold_out" json:"threshold_out"`
	CellSize     float64 `yaml:"cell_size" json:"cell_size"`
}

// DefaultTiers returns the built-in tier table: full detail close up,
// then three aggregation levels stepping out.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "individual", ThresholdIn: 0, ThresholdOut: 0, CellSize: 0},
		{Name: "representative", ThresholdIn: 32, ThresholdOut: 26, CellSize: 12},
		{Name: "cluster", ThresholdIn: 90, ThresholdOut: 75, CellSize: 34},
		{Name: "mega", ThresholdIn: 240, ThresholdOut: 200, CellSize: 96},
	}
}

// Selection is the outcome of one distance query: the active tier and
// a blend factor in [0,1] reporting progress toward the next coarser
// tier, for renderer cross-fades.
type Selection struct {
	Tier  Tier
	Index int
	Blend float64
}

// Selector holds the hysteretic tier state. The current tier index
// persists across calls; it is the one piece of mutable state in the
// LOD pipeline. Not safe for concurrent use.
type Selector struct {
	tiers   []Tier
	current int
}

// NewSelector validates the tier table and returns a selector resting
// at the finest tier.
func NewSelector(tiers []Tier) (*Selector, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier table is empty")
	}
	for i, tier := range tiers {
		if tier.CellSize < 0 {
			return nil, fmt.Errorf("tier %q: cell size must not be negative", tier.Name)
		}
		if i == 0 {
			continue
		}
		if tier.ThresholdIn <= tier.ThresholdOut {
			return nil, fmt.Errorf("tier %q: threshold_in %v must exceed threshold_out %v",
				tier.Name, tier.ThresholdIn, tier.ThresholdOut)
		}
		if tier.ThresholdIn <= tiers[i-1].ThresholdIn {
			return nil, fmt.Errorf("tier %q: threshold_in %v must exceed the previous tier's %v",
				tier.Name, tier.ThresholdIn, tiers[i-1].ThresholdIn)
		}
	}
	return &Selector{tiers: tiers}, nil
}

// Select advances the tier state for the given camera distance and
// returns the resulting selection. The forward scan (zooming out)
// enters coarser tiers at their ThresholdIn; the backward scan
// (zooming in) leaves the current tier only below its ThresholdOut.
func (s *Selector) Select(distance float64) Selection {
	for s.current+1 < len(s.tiers) && distance >= s.tiers[s.current+1].ThresholdIn {
		s.current++
	}
	for s.current > 0 && distance < s.tiers[s.current].ThresholdOut {
		s.current--
	}
	return Selection{
		Tier:  s.tiers[s.current],
		Index: s.current,
		Blend: s.blend(distance),
	}
}

func (s *Selector) blend(distance float64) float64 {
	if s.current+1 >= len(s.tiers) {
		return 0
	}
	start := s.tiers[s.current].ThresholdIn
	span := s.tiers[s.current+1].ThresholdIn - start
	if span <= 0 {
		return 0
	}
	b := (distance - start) / span
	if b < 0 {
		return 0
	}
	if b > 1 {
		return 1
	}
	return b
}

// Reset returns the selector to the finest tier.
func (s *Selector) Reset() {
	s.current = 0
}

// CellSizeAt maps a distance straight to a tier's cell size by
// ThresholdIn alone, without touching the hysteretic state. This is
// the pure function handed to the octree's distance-aware query, so
// near subtrees resolve finer than the frame's headline tier.
func (s *Selector) CellSizeAt(distance float64) float64 {
	cell := s.tiers[0].CellSize
	for _, tier := range s.tiers[1:] {
		if distance >= tier.ThresholdIn {
			cell = tier.CellSize
		}
	}
	return cell
}

// Tiers returns the selector's tier table.
func (s *Selector) Tiers() []Tier {
	return s.tiers
}
