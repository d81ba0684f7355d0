package octree

import "constella/orrery/internal/geom"

// CellSizeFunc maps a camera-to-node distance to the aggregation cell
// size appropriate at that distance. Zero or negative means full
// detail: return individual entries.
type CellSizeFunc func(distance float64) float64

// Aggregate is a collapsed subtree: the arithmetic mean of its
// members' positions, their summed mass, and who they are.
type Aggregate struct {
	Center  geom.Vec3 `json:"center"`
	Mass    float64   `json:"mass"`
	Count   int       `json:"count"`
	Members []string  `json:"members"`
}

// LODResult is one frame query's worth of renderables. Near nodes
// appear in Entries at full detail; far subtrees collapse into
// Aggregates.
type LODResult struct {
	Entries    []Entry
	Aggregates []Aggregate
}

// QueryLOD walks the tree once, resolving each visited node at the
// granularity the cell-size function requests for its distance from
// the camera. Tolerance widens the box-size band that counts as a
// match; it should be a small fraction like 0.25.
func (t *Tree) QueryLOD(camera geom.Vec3, cellSize CellSizeFunc, tolerance float64) *LODResult {
	out := &LODResult{}
	t.queryLOD(camera, cellSize, tolerance, out)
	return out
}

func (t *Tree) queryLOD(camera geom.Vec3, cellSize CellSizeFunc, tolerance float64, out *LODResult) {
	if t.count == 0 {
		return
	}

	cell := cellSize(camera.Distance(t.bounds.Center()))
	if cell <= 0 {
		out.Entries = t.appendEntries(out.Entries)
		return
	}

	// A box at or below the requested cell size collapses. Boxes halve
	// per level, so a walk can step over a narrow band; collapsing on
	// the first box at or under the band's top keeps the result close
	// to the requested granularity without a second pass.
	size := t.bounds.LongestSide()
	if size <= cell*(1+tolerance) {
		out.Aggregates = append(out.Aggregates, t.aggregate())
		return
	}
	if t.children != nil {
		for _, c := range t.children {
			c.queryLOD(camera, cellSize, tolerance, out)
		}
		return
	}
	// A leaf too coarse for the target cannot refine further;
	// aggregate it anyway.
	out.Aggregates = append(out.Aggregates, t.aggregate())
}

func (t *Tree) appendEntries(out []Entry) []Entry {
	if t.count == 0 {
		return out
	}
	if t.children == nil {
		return append(out, t.entries...)
	}
	for _, c := range t.children {
		out = c.appendEntries(out)
	}
	return out
}

func (t *Tree) aggregate() Aggregate {
	agg := Aggregate{}
	t.accumulate(&agg)
	if agg.Count > 0 {
		agg.Center = agg.Center.Scale(1 / float64(agg.Count))
	}
	return agg
}

func (t *Tree) accumulate(agg *Aggregate) {
	if t.count == 0 {
		return
	}
	if t.children == nil {
		for _, e := range t.entries {
			agg.Center = agg.Center.Add(e.Pos)
			agg.Mass += e.Mass
			agg.Count++
			agg.Members = append(agg.Members, e.ID)
		}
		return
	}
	for _, c := range t.children {
		c.accumulate(agg)
	}
}
