package graph

import (
	"math"
	"sort"
	"time"
)

// MemberStats holds the per-member interaction counts gathered during
// indexing. Neighbors is sorted and deduplicated. LastActive is the
// newest comment timestamp touching the member, zero when no comment
// references them.
type MemberStats struct {
	Posts        int
	PostComments int
	Direct       int
	LastActive   int64
	Neighbors    []string
}

// PairKey identifies an unordered member pair, lower id first.
type PairKey struct {
	A, B string
}

// NewPairKey normalizes (a,b) so the same pair always produces the
// same key regardless of comment direction.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// Snapshot holds the indexed graph for one refinement cycle: members,
// per-member stats, and the pair interaction table. It is rebuilt from
// scratch every cycle, never mutated incrementally.
type Snapshot struct {
	Members map[string]*Member
	Stats   map[string]*MemberStats
	Pairs   map[PairKey]int
	Risk    map[string]RiskScore
	Now     int64
}

// SnapshotOptions configures indexing. A zero Now means time.Now; a
// fixed Now makes the derived seed strings fully reproducible.
type SnapshotOptions struct {
	Weights MassWeights
	Risk    map[string]RiskScore
	Now     int64
}

// BuildSnapshot indexes raw members, posts, and comments. Posts and
// comments referencing unknown members are skipped, since partial
// collections occur naturally during incremental ingestion.
func BuildSnapshot(members []*Member, posts []Post, comments []Comment, opts SnapshotOptions) *Snapshot {
	now := opts.Now
	if now == 0 {
		now = time.Now().Unix()
	}

	memberMap := make(map[string]*Member, len(members))
	stats := make(map[string]*MemberStats, len(members))
	for _, m := range members {
		memberMap[m.ID] = m
		stats[m.ID] = &MemberStats{}
	}

	for _, p := range posts {
		st, ok := stats[p.AuthorID]
		if !ok {
			continue
		}
		st.Posts++
		st.PostComments += p.CommentCount
	}

	pairs := make(map[PairKey]int)
	neighborSets := make(map[string]map[string]bool)
	for _, c := range comments {
		if _, ok := memberMap[c.FromID]; !ok {
			continue
		}
		if _, ok := memberMap[c.ToID]; !ok {
			continue
		}
		if c.CreatedAt > stats[c.FromID].LastActive {
			stats[c.FromID].LastActive = c.CreatedAt
		}
		if c.CreatedAt > stats[c.ToID].LastActive {
			stats[c.ToID].LastActive = c.CreatedAt
		}
		if c.FromID == c.ToID {
			stats[c.FromID].Direct++
			continue
		}
		stats[c.FromID].Direct++
		stats[c.ToID].Direct++
		pairs[NewPairKey(c.FromID, c.ToID)]++

		for _, pair := range [2][2]string{{c.FromID, c.ToID}, {c.ToID, c.FromID}} {
			set, ok := neighborSets[pair[0]]
			if !ok {
				set = make(map[string]bool)
				neighborSets[pair[0]] = set
			}
			set[pair[1]] = true
		}
	}

	for id, set := range neighborSets {
		neighbors := make([]string, 0, len(set))
		for n := range set {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)
		stats[id].Neighbors = neighbors
	}

	for _, m := range members {
		m.Mass = opts.Weights.Mass(stats[m.ID], m.ServerComments)
	}

	return &Snapshot{
		Members: memberMap,
		Stats:   stats,
		Pairs:   pairs,
		Risk:    opts.Risk,
		Now:     now,
	}
}

// MemberIDs returns a sorted list of all member IDs (for deterministic output)
func (s *Snapshot) MemberIDs() []string {
	ids := make([]string, 0, len(s.Members))
	for id := range s.Members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Snapshot) Len() int {
	return len(s.Members)
}

// PairKeys returns the interaction pairs in sorted order. Scoring and
// the force simulation iterate pairs through this instead of ranging
// over the map, so float accumulation order never varies between runs.
func (s *Snapshot) PairKeys() []PairKey {
	keys := make([]PairKey, 0, len(s.Pairs))
	for k := range s.Pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})
	return keys
}

// Engagement is the activity measure used by the radial remap: at
// least the indexed mass, lifted by the server-reported comment total
// when that total says more than locally observed interactions do.
func (s *Snapshot) Engagement(id string) float64 {
	m, ok := s.Members[id]
	if !ok {
		return 0
	}
	server := 1 + math.Log(1+float64(m.ServerComments))
	return math.Max(m.Mass, server)
}

// DaysSober is the whole days between the member's reference timestamp
// and the snapshot clock, or 0 when the member never reported one.
func (s *Snapshot) DaysSober(id string) int {
	m, ok := s.Members[id]
	if !ok || m.SoberSince == nil {
		return 0
	}
	days := (s.Now - *m.SoberSince) / 86400
	if days < 0 {
		return 0
	}
	return int(days)
}
