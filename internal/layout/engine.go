package layout

import (
	"fmt"
	"math"

	"constella/orrery/internal/geom"
	"constella/orrery/internal/graph"
	"constella/orrery/internal/seed"
)

// HistoryEntry is one refinement cycle's outcome, kept in a bounded
// rolling window for monitoring and graphing.
type HistoryEntry struct {
	Session     int     `json:"session"`
	Seed        string  `json:"seed"`
	Fitness     float64 `json:"fitness"`
	Cohesion    float64 `json:"cohesion"`
	Stability   float64 `json:"stability"`
	Temperature float64 `json:"temperature"`
}

// Variant is one candidate layout evaluated during a cycle. Index 0
// is the exploit candidate (previous best seed unmutated); higher
// indices explore with increasing mutation magnitude.
type Variant struct {
	Index     int
	Seed      string
	Magnitude float64
	Score     Score
	Result    *Result
}

// Cycle reports one completed refinement invocation.
type Cycle struct {
	Session     int
	Temperature float64
	Winner      *Variant
	Variants    []*Variant
}

// Engine drives evolutionary refinement over successive snapshots.
// Its persistent state is the session counter, the best seed so far,
// the accepted layout, the winning neighborhoods, and the fitness
// history; all of it is replaced together when a cycle completes.
// Not safe for concurrent use.
type Engine struct {
	params   Params
	session  int
	bestSeed string
	accepted map[string]geom.Vec3
	hoods    []*graph.Neighborhood
	history  []HistoryEntry
}

// NewEngine validates the parameters and returns an engine starting
// from the given base seed with no accepted layout.
func NewEngine(baseSeed string, p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout params: %w", err)
	}
	return &Engine{
		params:   p,
		bestSeed: baseSeed,
		accepted: make(map[string]geom.Vec3),
	}, nil
}

// Restore pre-loads persisted state so refinement resumes where a
// previous process left off instead of restarting from scratch.
func (e *Engine) Restore(session int, bestSeed string, accepted map[string]geom.Vec3) {
	if session > 0 {
		e.session = session
	}
	if bestSeed != "" {
		e.bestSeed = bestSeed
	}
	if accepted != nil {
		e.accepted = accepted
	}
}

// Refine runs one refinement cycle against the snapshot: generate
// variant seeds, lay out and score each, select the fittest, install
// it. Returns nil without touching any state when the snapshot is
// empty (the cycle is abandoned, not failed).
func (e *Engine) Refine(snap *graph.Snapshot) *Cycle {
	if snap.Len() == 0 {
		return nil
	}
	e.session++
	temp := math.Max(0.03, math.Pow(e.params.AnnealRate, float64(e.session)))

	k := e.params.Variants
	variants := make([]*Variant, 0, k)
	for i := 0; i < k; i++ {
		v := &Variant{Index: i, Seed: e.bestSeed}
		if i > 0 {
			v.Magnitude = temp * (0.3 + (float64(i)/float64(k-1))*2.5)
			v.Seed = fmt.Sprintf("v%08x", seed.Hash(
				fmt.Sprintf("%s|%d|%d|%.6f", e.bestSeed, e.session, i, v.Magnitude)))
		}
		v.Result = Place(snap, v.Seed, e.params)
		v.Score = Evaluate(snap, v.Result.Positions, e.accepted, e.params)
		variants = append(variants, v)
	}

	// Argmax by fitness; ties go to the earlier (less mutated) variant.
	winner := variants[0]
	for _, v := range variants[1:] {
		if v.Score.Fitness > winner.Score.Fitness {
			winner = v
		}
	}

	// Install the winner: layout, neighborhoods, seed, and history
	// move together so a reader never sees a half-updated cycle.
	e.accepted = winner.Result.Positions
	e.hoods = winner.Result.Neighborhoods
	e.bestSeed = winner.Seed
	e.history = append(e.history, HistoryEntry{
		Session:     e.session,
		Seed:        winner.Seed,
		Fitness:     winner.Score.Fitness,
		Cohesion:    winner.Score.Cohesion,
		Stability:   winner.Score.Stability,
		Temperature: temp,
	})
	if len(e.history) > e.params.HistoryLimit {
		e.history = e.history[len(e.history)-e.params.HistoryLimit:]
	}

	// Push accepted positions back onto the members. Members absent
	// from the winning layout keep whatever position they had.
	for id, pos := range winner.Result.Positions {
		if m, ok := snap.Members[id]; ok {
			m.Position = pos
		}
	}

	return &Cycle{
		Session:     e.session,
		Temperature: temp,
		Winner:      winner,
		Variants:    variants,
	}
}

func (e *Engine) Session() int { return e.session }

func (e *Engine) BestSeed() string { return e.bestSeed }

// Accepted returns the live accepted layout. Callers must treat it as
// read-only; it is replaced wholesale each cycle.
func (e *Engine) Accepted() map[string]geom.Vec3 {
	return e.accepted
}

// Neighborhoods returns the winning cycle's neighborhoods, or nil
// before the first completed cycle.
func (e *Engine) Neighborhoods() []*graph.Neighborhood {
	return e.hoods
}

// History returns the rolling fitness history, oldest first.
func (e *Engine) History() []HistoryEntry {
	return e.history
}
