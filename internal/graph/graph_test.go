package graph

import (
	"fmt"
	"math"
	"testing"
)

const testNow int64 = 1_700_000_000

func int64Ptr(v int64) *int64 { return &v }

func makeMembers(ids ...string) []*Member {
	var members []*Member
	for _, id := range ids {
		members = append(members, &Member{ID: id, Username: "user-" + id})
	}
	return members
}

// quickSnapshot builds a snapshot from member ids and one comment per
// listed pair, using default weights and a fixed clock.
func quickSnapshot(memberIDs []string, comments [][2]string) *Snapshot {
	var cs []Comment
	for i, c := range comments {
		cs = append(cs, Comment{
			ID: fmt.Sprintf("c%d", i), FromID: c[0], ToID: c[1], CreatedAt: testNow,
		})
	}
	return BuildSnapshot(makeMembers(memberIDs...), nil, cs, SnapshotOptions{
		Weights: DefaultMassWeights(),
		Now:     testNow,
	})
}

// --- Snapshot Tests ---

func TestSnapshot_Stats(t *testing.T) {
	members := makeMembers("A", "B", "C")
	posts := []Post{
		{ID: "p1", AuthorID: "A", CommentCount: 4},
		{ID: "p2", AuthorID: "A", CommentCount: 1},
	}
	comments := []Comment{
		{ID: "c1", FromID: "A", ToID: "B", CreatedAt: testNow},
		{ID: "c2", FromID: "B", ToID: "A", CreatedAt: testNow},
		{ID: "c3", FromID: "B", ToID: "C", CreatedAt: testNow},
	}
	snap := BuildSnapshot(members, posts, comments, SnapshotOptions{
		Weights: DefaultMassWeights(), Now: testNow,
	})

	a := snap.Stats["A"]
	if a.Posts != 2 || a.PostComments != 5 {
		t.Errorf("A posts=%d postComments=%d, want 2/5", a.Posts, a.PostComments)
	}
	if a.Direct != 2 {
		t.Errorf("A direct=%d, want 2", a.Direct)
	}
	if len(a.Neighbors) != 1 || a.Neighbors[0] != "B" {
		t.Errorf("A neighbors=%v, want [B]", a.Neighbors)
	}

	b := snap.Stats["B"]
	if b.Direct != 3 {
		t.Errorf("B direct=%d, want 3", b.Direct)
	}
	if len(b.Neighbors) != 2 || b.Neighbors[0] != "A" || b.Neighbors[1] != "C" {
		t.Errorf("B neighbors=%v, want [A C] sorted", b.Neighbors)
	}
}

func TestSnapshot_PairNormalization(t *testing.T) {
	snap := quickSnapshot(
		[]string{"A", "B"},
		[][2]string{{"A", "B"}, {"B", "A"}, {"A", "B"}},
	)
	if len(snap.Pairs) != 1 {
		t.Fatalf("expected 1 normalized pair, got %d", len(snap.Pairs))
	}
	if got := snap.Pairs[NewPairKey("B", "A")]; got != 3 {
		t.Errorf("pair count = %d, want 3 regardless of direction", got)
	}
}

func TestSnapshot_SkipsUnknownRefs(t *testing.T) {
	members := makeMembers("A")
	posts := []Post{{ID: "p1", AuthorID: "ghost", CommentCount: 9}}
	comments := []Comment{{ID: "c1", FromID: "A", ToID: "ghost", CreatedAt: testNow}}
	snap := BuildSnapshot(members, posts, comments, SnapshotOptions{
		Weights: DefaultMassWeights(), Now: testNow,
	})

	if snap.Stats["A"].Direct != 0 {
		t.Errorf("comment to unknown member should be skipped, direct=%d", snap.Stats["A"].Direct)
	}
	if len(snap.Pairs) != 0 {
		t.Errorf("expected no pairs, got %d", len(snap.Pairs))
	}
}

func TestSnapshot_SelfCommentNoNeighbor(t *testing.T) {
	snap := quickSnapshot([]string{"A"}, [][2]string{{"A", "A"}})
	if snap.Stats["A"].Direct != 1 {
		t.Errorf("self comment direct=%d, want 1", snap.Stats["A"].Direct)
	}
	if len(snap.Stats["A"].Neighbors) != 0 {
		t.Errorf("self comment must not create a neighbor, got %v", snap.Stats["A"].Neighbors)
	}
	if len(snap.Pairs) != 0 {
		t.Errorf("self comment must not create a pair, got %d", len(snap.Pairs))
	}
}

func TestSnapshot_LastActive(t *testing.T) {
	members := makeMembers("A", "B", "C")
	comments := []Comment{
		{ID: "c1", FromID: "A", ToID: "B", CreatedAt: testNow - 500},
		{ID: "c2", FromID: "B", ToID: "A", CreatedAt: testNow - 100},
	}
	snap := BuildSnapshot(members, nil, comments, SnapshotOptions{
		Weights: DefaultMassWeights(), Now: testNow,
	})

	// Both sides of a comment count as activity.
	if got := snap.Stats["A"].LastActive; got != testNow-100 {
		t.Errorf("A last active = %d, want %d", got, testNow-100)
	}
	if got := snap.Stats["B"].LastActive; got != testNow-100 {
		t.Errorf("B last active = %d, want %d", got, testNow-100)
	}
	if got := snap.Stats["C"].LastActive; got != 0 {
		t.Errorf("C never commented, last active = %d, want 0", got)
	}
}

// --- Mass Tests ---

func TestMass_Formula(t *testing.T) {
	w := MassWeights{Post: 0.5, PostComments: 0.25, Direct: 1, Server: 0.1, Neighbors: 2}
	st := &MemberStats{Posts: 2, PostComments: 4, Direct: 3, Neighbors: []string{"x", "y"}}

	// 1 + 2*0.5 + 4*0.25 + 3*1 + 10*0.1 + 2*2 = 11
	if got := w.Mass(st, 10); math.Abs(got-11) > 1e-12 {
		t.Errorf("mass = %v, want 11", got)
	}
}

func TestMass_Floor(t *testing.T) {
	w := MassWeights{Post: -5}
	st := &MemberStats{Posts: 100}
	if got := w.Mass(st, 0); got != 1 {
		t.Errorf("mass = %v, want floor of 1", got)
	}
	if got := w.Mass(nil, 0); got != 1 {
		t.Errorf("nil stats mass = %v, want 1", got)
	}
	if got := (MassWeights{}).Mass(&MemberStats{}, 0); got != 1 {
		t.Errorf("inactive member mass = %v, want 1", got)
	}
}

func TestEngagement_ServerLift(t *testing.T) {
	members := makeMembers("quiet")
	members[0].ServerComments = 200
	snap := BuildSnapshot(members, nil, nil, SnapshotOptions{
		Weights: MassWeights{}, Now: testNow,
	})

	// Mass is 1 (no local activity, zero weights) but the server total
	// says otherwise: engagement must use 1+ln(201).
	want := 1 + math.Log(201)
	if got := snap.Engagement("quiet"); math.Abs(got-want) > 1e-9 {
		t.Errorf("engagement = %v, want %v", got, want)
	}
	if got := snap.Engagement("missing"); got != 0 {
		t.Errorf("engagement of missing member = %v, want 0", got)
	}
}

func TestDaysSober(t *testing.T) {
	members := makeMembers("A", "B")
	members[0].SoberSince = int64Ptr(testNow - 90*86400)
	snap := BuildSnapshot(members, nil, nil, SnapshotOptions{
		Weights: DefaultMassWeights(), Now: testNow,
	})

	if got := snap.DaysSober("A"); got != 90 {
		t.Errorf("A days sober = %d, want 90", got)
	}
	if got := snap.DaysSober("B"); got != 0 {
		t.Errorf("B (no timestamp) days sober = %d, want 0", got)
	}
}

// --- Neighborhood Tests ---

func TestNeighborhoods_Empty(t *testing.T) {
	snap := quickSnapshot(nil, nil)
	if nhs := snap.Neighborhoods(); len(nhs) != 0 {
		t.Errorf("empty snapshot should have no neighborhoods, got %d", len(nhs))
	}
}

func TestNeighborhoods_SingleComponent(t *testing.T) {
	snap := quickSnapshot(
		[]string{"A", "B", "C", "D", "E"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "E"}},
	)
	nhs := snap.Neighborhoods()
	if len(nhs) != 1 {
		t.Fatalf("expected 1 neighborhood, got %d", len(nhs))
	}
	if nhs[0].Size() != 5 {
		t.Errorf("expected size 5, got %d", nhs[0].Size())
	}
}

func TestNeighborhoods_SingletonsIncluded(t *testing.T) {
	snap := quickSnapshot(
		[]string{"A", "B", "loner"},
		[][2]string{{"A", "B"}},
	)
	nhs := snap.Neighborhoods()
	if len(nhs) != 2 {
		t.Fatalf("expected 2 neighborhoods, got %d", len(nhs))
	}
	sizes := map[int]int{}
	for _, nh := range nhs {
		sizes[nh.Size()]++
	}
	if sizes[2] != 1 || sizes[1] != 1 {
		t.Errorf("expected one pair and one singleton, got sizes %v", sizes)
	}
}

func TestNeighborhoods_Partition(t *testing.T) {
	// Three components of mixed size plus isolated members.
	ids := []string{"a1", "a2", "a3", "b1", "b2", "c1", "lone1", "lone2"}
	snap := quickSnapshot(ids, [][2]string{
		{"a1", "a2"}, {"a2", "a3"}, {"a3", "a1"},
		{"b1", "b2"},
		{"c1", "b1"},
	})
	nhs := snap.Neighborhoods()

	seen := map[string]int{}
	for _, nh := range nhs {
		for _, id := range nh.Members {
			seen[id]++
		}
	}
	if len(seen) != len(ids) {
		t.Errorf("union of neighborhoods covers %d members, want %d", len(seen), len(ids))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("member %s appears in %d neighborhoods, want exactly 1", id, n)
		}
	}
}

func TestNeighborhoods_Deterministic(t *testing.T) {
	snap := quickSnapshot(
		[]string{"m1", "m2", "m3", "m4", "m5", "m6"},
		[][2]string{{"m5", "m1"}, {"m3", "m2"}, {"m1", "m6"}},
	)
	a := snap.Neighborhoods()
	b := snap.Neighborhoods()
	if len(a) != len(b) {
		t.Fatalf("neighborhood count differs across runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if len(a[i].Members) != len(b[i].Members) {
			t.Fatalf("neighborhood %d size differs", i)
		}
		for j := range a[i].Members {
			if a[i].Members[j] != b[i].Members[j] {
				t.Errorf("neighborhood %d member %d differs: %s vs %s",
					i, j, a[i].Members[j], b[i].Members[j])
			}
		}
	}
}

// --- Risk Tests ---

func TestRiskLevel_RoundTrip(t *testing.T) {
	for _, l := range []RiskLevel{RiskUnknown, RiskLow, RiskWatch, RiskHigh} {
		if got := ParseRiskLevel(l.String()); got != l {
			t.Errorf("ParseRiskLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}
	if got := ParseRiskLevel("garbage"); got != RiskUnknown {
		t.Errorf("unrecognized level = %v, want RiskUnknown", got)
	}
}

// --- Report Tests ---

func TestReport_EmptyGraph(t *testing.T) {
	snap := quickSnapshot(nil, nil)
	r := BuildReport(snap, 10)
	if r.TotalMembers != 0 || r.Neighborhoods != 0 {
		t.Errorf("empty graph should have all zeros, got members=%d neighborhoods=%d",
			r.TotalMembers, r.Neighborhoods)
	}
	if len(r.DegreeHistogram) != 7 {
		t.Errorf("expected 7 histogram buckets, got %d", len(r.DegreeHistogram))
	}
}

func TestReport_Isolated(t *testing.T) {
	snap := quickSnapshot(
		[]string{"A", "B", "C"},
		[][2]string{{"A", "B"}},
	)
	r := BuildReport(snap, 10)
	if r.IsolatedCount != 1 {
		t.Fatalf("expected 1 isolated member, got %d", r.IsolatedCount)
	}
	if r.IsolatedIDs[0] != "C" {
		t.Errorf("C should be isolated, got %v", r.IsolatedIDs)
	}
	if r.Neighborhoods != 2 {
		t.Errorf("expected 2 neighborhoods, got %d", r.Neighborhoods)
	}
}

func TestReport_TopEngaged(t *testing.T) {
	snap := quickSnapshot(
		[]string{"hub", "s1", "s2", "s3"},
		[][2]string{{"hub", "s1"}, {"hub", "s2"}, {"hub", "s3"}},
	)
	r := BuildReport(snap, 2)
	if len(r.TopEngaged) != 2 {
		t.Fatalf("expected topN=2 entries, got %d", len(r.TopEngaged))
	}
	if r.TopEngaged[0].ID != "hub" {
		t.Errorf("expected hub first, got %s", r.TopEngaged[0].ID)
	}
	if r.TopEngaged[0].Degree != 3 {
		t.Errorf("hub degree = %d, want 3", r.TopEngaged[0].Degree)
	}
}

func TestReport_NeighborhoodHistogram(t *testing.T) {
	snap := quickSnapshot(
		[]string{"A", "B", "loner"},
		[][2]string{{"A", "B"}},
	)
	r := BuildReport(snap, 10)

	if len(r.NeighborhoodHistogram) != 6 {
		t.Fatalf("expected 6 size buckets, got %d", len(r.NeighborhoodHistogram))
	}
	if b := r.NeighborhoodHistogram[0]; b.Label != "1" || b.Count != 1 {
		t.Errorf("singleton bucket = %+v, want label 1 count 1", b)
	}
	if b := r.NeighborhoodHistogram[1]; b.Label != "2-3" || b.Count != 1 {
		t.Errorf("pair bucket = %+v, want label 2-3 count 1", b)
	}
	for _, b := range r.NeighborhoodHistogram[2:] {
		if b.Count != 0 {
			t.Errorf("bucket %s should be empty, got %d", b.Label, b.Count)
		}
	}
}

// --- Activity Tests ---

func TestActivity_QuietDetection(t *testing.T) {
	members := makeMembers("A", "B", "C", "D", "E")
	members[0].JoinedAt = int64Ptr(testNow - 400*86400)
	members[1].JoinedAt = int64Ptr(testNow - 400*86400)
	members[2].JoinedAt = int64Ptr(testNow - 400*86400)
	members[3].JoinedAt = int64Ptr(testNow - 100*86400)
	// E has no timestamps at all and must not be judged.

	comments := []Comment{
		{ID: "c1", FromID: "A", ToID: "B", CreatedAt: testNow - 5*86400},
		{ID: "c2", FromID: "C", ToID: "A", CreatedAt: testNow - 60*86400},
	}
	snap := BuildSnapshot(members, nil, comments, SnapshotOptions{
		Weights: DefaultMassWeights(), Now: testNow,
	})

	r := ComputeActivity(snap, 30)
	if r.TrackedCount != 4 {
		t.Errorf("tracked = %d, want 4", r.TrackedCount)
	}
	if r.QuietCount != 2 {
		t.Fatalf("quiet = %d, want 2 (C and D)", r.QuietCount)
	}

	// D joined 100 days ago and never commented; C last commented 60
	// days ago. Quietest first.
	if r.QuietMembers[0].ID != "D" || r.QuietMembers[0].DaysQuiet != 100 {
		t.Errorf("first quiet = %+v, want D at 100d", r.QuietMembers[0])
	}
	if r.QuietMembers[0].LastActive != 0 {
		t.Errorf("D never commented, last active = %d, want 0", r.QuietMembers[0].LastActive)
	}
	if r.QuietMembers[1].ID != "C" || r.QuietMembers[1].DaysQuiet != 60 {
		t.Errorf("second quiet = %+v, want C at 60d", r.QuietMembers[1])
	}
}

func TestActivity_RecentCommentClears(t *testing.T) {
	members := makeMembers("A", "B")
	members[0].JoinedAt = int64Ptr(testNow - 400*86400)
	members[1].JoinedAt = int64Ptr(testNow - 400*86400)
	comments := []Comment{
		{ID: "c1", FromID: "A", ToID: "B", CreatedAt: testNow - 86400},
	}
	snap := BuildSnapshot(members, nil, comments, SnapshotOptions{
		Weights: DefaultMassWeights(), Now: testNow,
	})

	// A recent comment clears both parties despite the old join dates.
	r := ComputeActivity(snap, 30)
	if r.QuietCount != 0 {
		t.Errorf("quiet = %d, want 0, members %v", r.QuietCount, r.QuietMembers)
	}
}

// --- Connector Tests ---

func TestConnectors_Chain(t *testing.T) {
	snap := quickSnapshot(
		[]string{"A", "B", "C"},
		[][2]string{{"A", "B"}, {"B", "C"}},
	)
	r := FindConnectors(snap)

	if r.ConnectorCount != 1 || r.Connectors[0].ID != "B" {
		t.Fatalf("expected B as the only connector, got %+v", r.Connectors)
	}
	if r.Connectors[0].Ties != 2 {
		t.Errorf("B ties = %d, want 2", r.Connectors[0].Ties)
	}
	if r.ThinTieCount != 2 {
		t.Fatalf("expected 2 thin ties, got %d", r.ThinTieCount)
	}
	if r.ThinTies[0].A != "A" || r.ThinTies[0].B != "B" {
		t.Errorf("first thin tie = %+v, want A-B", r.ThinTies[0])
	}
	if r.ThinTies[1].A != "B" || r.ThinTies[1].B != "C" {
		t.Errorf("second thin tie = %+v, want B-C", r.ThinTies[1])
	}
}

func TestConnectors_CycleHasNone(t *testing.T) {
	snap := quickSnapshot(
		[]string{"A", "B", "C"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}},
	)
	r := FindConnectors(snap)
	if r.ConnectorCount != 0 || r.ThinTieCount != 0 {
		t.Errorf("cycle has no weak points, got connectors=%v ties=%v",
			r.Connectors, r.ThinTies)
	}
}

func TestConnectors_StarCenter(t *testing.T) {
	// The walk starts at the hub here, exercising the root rule.
	snap := quickSnapshot(
		[]string{"hub", "s1", "s2"},
		[][2]string{{"hub", "s1"}, {"hub", "s2"}},
	)
	r := FindConnectors(snap)
	if r.ConnectorCount != 1 || r.Connectors[0].ID != "hub" {
		t.Errorf("expected hub as connector, got %+v", r.Connectors)
	}
}

func TestConnectors_BridgedCliques(t *testing.T) {
	snap := quickSnapshot(
		[]string{"a1", "a2", "a3", "b1", "b2", "b3"},
		[][2]string{
			{"a1", "a2"}, {"a2", "a3"}, {"a3", "a1"},
			{"b1", "b2"}, {"b2", "b3"}, {"b3", "b1"},
			{"a3", "b1"},
		},
	)
	r := FindConnectors(snap)

	if r.ConnectorCount != 2 {
		t.Fatalf("expected the two bridge endpoints, got %+v", r.Connectors)
	}
	if r.Connectors[0].ID != "a3" || r.Connectors[1].ID != "b1" {
		t.Errorf("connectors = %+v, want a3 and b1", r.Connectors)
	}
	if r.ThinTieCount != 1 || r.ThinTies[0].A != "a3" || r.ThinTies[0].B != "b1" {
		t.Errorf("thin ties = %+v, want only a3-b1", r.ThinTies)
	}
}

func TestConnectors_Empty(t *testing.T) {
	r := FindConnectors(quickSnapshot(nil, nil))
	if r.ConnectorCount != 0 || r.ThinTieCount != 0 {
		t.Errorf("empty snapshot should have no weak points, got %+v", r)
	}
}

// --- Health Tests ---

func TestHealth_Empty(t *testing.T) {
	h := CommunityHealth(quickSnapshot(nil, nil), 30)
	if h.Score != 0 {
		t.Errorf("empty community score = %v, want 0", h.Score)
	}
	if h.Connectors == nil || h.Quiet == nil {
		t.Error("sub-reports must be present even for an empty community")
	}
}

func TestHealth_CohesiveCommunity(t *testing.T) {
	// A fresh triangle: nobody isolated, nobody quiet, no cut points.
	snap := quickSnapshot(
		[]string{"A", "B", "C"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}},
	)
	h := CommunityHealth(snap, 30)
	if math.Abs(h.Score-1) > 1e-9 {
		t.Errorf("score = %v, want 1.0, breakdown %+v", h.Score, h.Breakdown)
	}
}

func TestHealth_PenalizesFragmentation(t *testing.T) {
	// One pair plus three loners: connectivity bottoms out, cohesion
	// reflects the 2-of-5 largest neighborhood, the rest stay clean.
	snap := quickSnapshot(
		[]string{"A", "B", "C", "D", "E"},
		[][2]string{{"A", "B"}},
	)
	h := CommunityHealth(snap, 30)

	if h.Breakdown.Connectivity != 0 {
		t.Errorf("connectivity = %v, want 0 with 60%% isolated", h.Breakdown.Connectivity)
	}
	if math.Abs(h.Breakdown.Cohesion-0.4) > 1e-9 {
		t.Errorf("cohesion = %v, want 0.4", h.Breakdown.Cohesion)
	}
	want := 0.25*0.4 + 0.25 + 0.20
	if math.Abs(h.Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", h.Score, want)
	}
}

func TestHealth_ResiliencePenalty(t *testing.T) {
	// In a 3-chain the middle member is a cut point and 1/3 is far past
	// the 5% tolerance, so resilience bottoms out.
	snap := quickSnapshot(
		[]string{"A", "B", "C"},
		[][2]string{{"A", "B"}, {"B", "C"}},
	)
	h := CommunityHealth(snap, 30)
	if h.Breakdown.Resilience != 0 {
		t.Errorf("resilience = %v, want 0", h.Breakdown.Resilience)
	}
	if h.Breakdown.Connectivity != 1 || h.Breakdown.Cohesion != 1 {
		t.Errorf("connectivity/cohesion = %v/%v, want 1/1",
			h.Breakdown.Connectivity, h.Breakdown.Cohesion)
	}
}
