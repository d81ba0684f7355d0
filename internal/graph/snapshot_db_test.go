package graph

import (
	"path/filepath"
	"testing"

	"constella/orrery/internal/db"
	"constella/orrery/internal/geom"
)

func bridgeDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.OpenDB(filepath.Join(t.TempDir(), "orrery.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	for _, id := range []string{"a", "b", "c"} {
		if err := d.InsertMember(db.Member{ID: id, Username: "user_" + id}); err != nil {
			t.Fatalf("InsertMember(%s): %v", id, err)
		}
	}
	return d
}

// --- Store Bridge Tests ---

func TestSnapshotFromDB_IndexesStore(t *testing.T) {
	d := bridgeDB(t)
	if err := d.InsertPost(db.Post{ID: "p1", AuthorID: "a", CommentCount: 3}); err != nil {
		t.Fatalf("InsertPost: %v", err)
	}
	if err := d.InsertComment(db.Comment{ID: "c1", FromID: "a", ToID: "b", CreatedAt: 100}); err != nil {
		t.Fatalf("InsertComment: %v", err)
	}

	snap, err := SnapshotFromDB(d, SnapshotOptions{Weights: DefaultMassWeights(), Now: 1000})
	if err != nil {
		t.Fatalf("SnapshotFromDB: %v", err)
	}

	if snap.Len() != 3 {
		t.Fatalf("expected 3 members, got %d", snap.Len())
	}
	if st := snap.Stats["a"]; st.Posts != 1 || st.PostComments != 3 || st.Direct != 1 {
		t.Errorf("member a stats = %+v, want posts 1, post comments 3, direct 1", st)
	}
	if got := snap.Stats["b"].Neighbors; len(got) != 1 || got[0] != "a" {
		t.Errorf("member b neighbors = %v, want [a]", got)
	}
	if snap.Members["a"].Mass <= snap.Members["c"].Mass {
		t.Errorf("active member mass %.2f should exceed idle member mass %.2f",
			snap.Members["a"].Mass, snap.Members["c"].Mass)
	}
}

func TestSnapshotFromDB_AttachesStoredLayout(t *testing.T) {
	d := bridgeDB(t)
	err := d.SaveLayout(db.LayoutState{Session: 4, BestSeed: "s"}, []db.Position{
		{MemberID: "a", X: 1, Y: 2, Z: 3, UpdatedAt: 500},
	})
	if err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}

	snap, err := SnapshotFromDB(d, SnapshotOptions{Now: 1000})
	if err != nil {
		t.Fatalf("SnapshotFromDB: %v", err)
	}

	want := geom.Vec3{X: 1, Y: 2, Z: 3}
	a := snap.Members["a"]
	if a.Position != want {
		t.Errorf("stored position not attached: got %v, want %v", a.Position, want)
	}
	if a.Visual.Pos != want || a.Visual.Opacity != 1 || a.Visual.Scale != 1 {
		t.Errorf("visual state not seeded from stored position: got %+v", a.Visual)
	}

	// Members without a stored row start from the zero value; the
	// renderer fades those in itself.
	b := snap.Members["b"]
	if b.Position != (geom.Vec3{}) || b.Visual != (Visual{}) {
		t.Errorf("unstored member should stay zero, got pos %v visual %+v", b.Position, b.Visual)
	}
}

func TestSnapshotFromDB_LoadsRiskScores(t *testing.T) {
	d := bridgeDB(t)
	if err := d.SetRiskScore(db.RiskScore{MemberID: "a", Risk: 0.83, Level: "high"}); err != nil {
		t.Fatalf("SetRiskScore: %v", err)
	}
	if err := d.SetRiskScore(db.RiskScore{MemberID: "b", Risk: 0.5, Level: "mystery"}); err != nil {
		t.Fatalf("SetRiskScore: %v", err)
	}

	snap, err := SnapshotFromDB(d, SnapshotOptions{Now: 1000})
	if err != nil {
		t.Fatalf("SnapshotFromDB: %v", err)
	}

	if rs := snap.Risk["a"]; rs.Risk != 0.83 || rs.Level != RiskHigh {
		t.Errorf("risk for a = %+v, want 0.83/high", rs)
	}
	if rs := snap.Risk["b"]; rs.Level != RiskUnknown {
		t.Errorf("unrecognized level should parse as unknown, got %v", rs.Level)
	}
	if _, ok := snap.Risk["c"]; ok {
		t.Error("member without a stored score should not appear in Risk")
	}
}

func TestSnapshotFromDB_CallerRiskWins(t *testing.T) {
	d := bridgeDB(t)
	if err := d.SetRiskScore(db.RiskScore{MemberID: "a", Risk: 0.9, Level: "high"}); err != nil {
		t.Fatalf("SetRiskScore: %v", err)
	}

	fresh := map[string]RiskScore{"a": {Risk: 0.1, Level: RiskLow}}
	snap, err := SnapshotFromDB(d, SnapshotOptions{Risk: fresh, Now: 1000})
	if err != nil {
		t.Fatalf("SnapshotFromDB: %v", err)
	}

	if rs := snap.Risk["a"]; rs.Risk != 0.1 || rs.Level != RiskLow {
		t.Errorf("caller-supplied risk should override stored rows, got %+v", rs)
	}
}

func TestStoredLayout_EmptyDB(t *testing.T) {
	d := bridgeDB(t)
	positions, err := StoredLayout(d)
	if err != nil {
		t.Fatalf("StoredLayout: %v", err)
	}
	if len(positions) != 0 {
		t.Errorf("expected empty layout, got %d positions", len(positions))
	}
}
