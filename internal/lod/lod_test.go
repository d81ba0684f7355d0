package lod

import "testing"

func mustSelector(t *testing.T) *Selector {
	t.Helper()
	s, err := NewSelector(DefaultTiers())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSelector_Validation(t *testing.T) {
	if _, err := NewSelector(nil); err == nil {
		t.Error("expected error for empty tier table")
	}
	bad := []Tier{
		{Name: "a"},
		{Name: "b", ThresholdIn: 10, ThresholdOut: 10, CellSize: 5},
	}
	if _, err := NewSelector(bad); err == nil {
		t.Error("expected error when threshold_in does not exceed threshold_out")
	}
	unordered := []Tier{
		{Name: "a"},
		{Name: "b", ThresholdIn: 50, ThresholdOut: 40, CellSize: 5},
		{Name: "c", ThresholdIn: 30, ThresholdOut: 20, CellSize: 9},
	}
	if _, err := NewSelector(unordered); err == nil {
		t.Error("expected error for non-increasing threshold_in")
	}
	negative := []Tier{{Name: "a", CellSize: -1}}
	if _, err := NewSelector(negative); err == nil {
		t.Error("expected error for negative cell size")
	}
}

func TestSelector_HysteresisProbe(t *testing.T) {
	// A camera jittering around the 32 boundary: one settle onto the
	// coarser tier, then no further changes.
	s := mustSelector(t)
	probe := []float64{30, 33, 31, 33, 31}
	want := []int{0, 1, 1, 1, 1}
	for i, d := range probe {
		sel := s.Select(d)
		if sel.Index != want[i] {
			t.Fatalf("distance %v selected tier %d (%s), want %d", d, sel.Index, sel.Tier.Name, want[i])
		}
	}
}

func TestSelector_ZoomOutAndBack(t *testing.T) {
	s := mustSelector(t)

	sel := s.Select(500)
	if sel.Tier.Name != "mega" {
		t.Fatalf("distance 500 selected %s, want mega", sel.Tier.Name)
	}
	// A long zoom-in crosses several thresholds in one call.
	sel = s.Select(10)
	if sel.Tier.Name != "individual" {
		t.Fatalf("distance 10 selected %s, want individual", sel.Tier.Name)
	}
}

func TestSelector_BandHolds(t *testing.T) {
	s := mustSelector(t)
	s.Select(40) // settle on representative (in at 32, out at 26)

	for _, d := range []float64{31, 27, 30, 26.5, 29} {
		if sel := s.Select(d); sel.Tier.Name != "representative" {
			t.Errorf("distance %v dropped to %s inside the hysteresis band", d, sel.Tier.Name)
		}
	}
	if sel := s.Select(25); sel.Tier.Name != "individual" {
		t.Errorf("distance 25 selected %s, want individual below threshold_out", sel.Tier.Name)
	}
}

func TestSelector_Blend(t *testing.T) {
	s := mustSelector(t)

	low := s.Select(8).Blend
	high := s.Select(30).Blend
	if !(low < high) {
		t.Errorf("blend should grow toward the next tier: %v then %v", low, high)
	}
	if low < 0 || low > 1 || high < 0 || high > 1 {
		t.Errorf("blend out of [0,1]: %v, %v", low, high)
	}

	if b := s.Select(10_000).Blend; b != 0 {
		t.Errorf("coarsest tier has no next tier to blend toward, got %v", b)
	}
}

func TestSelector_Reset(t *testing.T) {
	s := mustSelector(t)
	s.Select(500)
	s.Reset()
	// After reset the band no longer holds: 28 is below representative's
	// threshold_in, so a fresh selector stays at the finest tier.
	if sel := s.Select(28); sel.Tier.Name != "individual" {
		t.Errorf("after reset distance 28 selected %s, want individual", sel.Tier.Name)
	}
}

func TestCellSizeAt(t *testing.T) {
	s := mustSelector(t)
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 0},
		{31, 0},
		{32, 12},
		{89, 12},
		{90, 34},
		{1000, 96},
	}
	for _, c := range cases {
		if got := s.CellSizeAt(c.distance); got != c.want {
			t.Errorf("CellSizeAt(%v) = %v, want %v", c.distance, got, c.want)
		}
	}

	// The pure mapping never touches hysteretic state.
	s.Select(500)
	before := s.Select(210).Index
	s.CellSizeAt(1)
	if after := s.Select(210).Index; after != before {
		t.Error("CellSizeAt must not mutate selector state")
	}
}
