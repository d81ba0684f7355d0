package layout

import (
	"fmt"
	"math"
	"strings"

	"constella/orrery/internal/geom"
	"constella/orrery/internal/graph"
	"constella/orrery/internal/seed"
)

// Result is one fully computed candidate layout.
type Result struct {
	Seed          string
	Positions     map[string]geom.Vec3
	Neighborhoods []*graph.Neighborhood
}

// Place runs the layout codec: cluster, hash, position, remap. The
// output is a pure function of the snapshot contents and the seed;
// two runs over the same inputs produce bit-identical positions.
func Place(snap *graph.Snapshot, layoutSeed string, p Params) *Result {
	nhs := snap.Neighborhoods()
	result := &Result{
		Seed:          layoutSeed,
		Positions:     make(map[string]geom.Vec3, snap.Len()),
		Neighborhoods: nhs,
	}
	if snap.Len() == 0 {
		return result
	}

	ids := snap.MemberIDs()
	memberSeeds := make(map[string]string, len(ids))
	for _, id := range ids {
		memberSeeds[id] = memberSeed(snap, id, layoutSeed)
	}

	// Neighborhood identity: hash of the concatenated member seeds
	// (members are already sorted), then a sphere point for the
	// center. The sphere grows with the neighborhood count so crowded
	// graphs spread out.
	nhRadius := p.NHRadiusBase + float64(len(nhs))*p.NHRadiusScale
	for i, nh := range nhs {
		var sb strings.Builder
		for _, id := range nh.Members {
			sb.WriteString(memberSeeds[id])
		}
		nh.Hash = seed.Hash(sb.String())
		nh.Center = seed.SpherePoint(fmt.Sprintf("nh:%d:%d:%s", i, nh.Hash, layoutSeed), nhRadius)
	}

	// Raw position: center plus a gravity-scaled local offset. High
	// mass shrinks the offset, sinking engaged members toward their
	// neighborhood's core. Log-scaled local radius keeps big clusters
	// from exploding linearly.
	for _, nh := range nhs {
		localRadius := p.LocalRadiusBase + math.Log(1+float64(nh.Size()))*p.LocalRadiusScale*10
		for _, id := range nh.Members {
			offset := seed.SpherePoint(memberSeeds[id], localRadius)
			denom := 1 + gravityValue(snap, id, p)*p.GravityFactor
			result.Positions[id] = nh.Center.Add(offset.Scale(1 / denom))
		}
	}

	remap(snap, ids, result.Positions, p)
	if p.AttractorStrength > 0 {
		attract(snap, ids, result.Positions, p)
	}
	return result
}

// memberSeed is the member's deterministic identity string: who they
// are, what they have done, who they talk to, how long they have been
// sober, and which refinement seed is being tried.
func memberSeed(snap *graph.Snapshot, id, layoutSeed string) string {
	st := snap.Stats[id]
	return fmt.Sprintf("%s:%d:%d:%d:%s:%d:%s",
		id, st.Posts, st.PostComments, st.Direct,
		strings.Join(st.Neighbors, ","), snap.DaysSober(id), layoutSeed)
}

// gravityValue is normally the member's mass. When an external risk
// prediction is present it is blended in: higher predicted risk
// weakens gravity, drifting the member away from the cluster core.
func gravityValue(snap *graph.Snapshot, id string, p Params) float64 {
	mass := snap.Members[id].Mass
	if rs, ok := snap.Risk[id]; ok && rs.Level != graph.RiskUnknown {
		return mass*p.RiskMassWeight + (1-rs.Risk)*3*p.RiskSignalWeight
	}
	return mass
}

// remap rescales the raw positions onto the world sphere: Y encodes
// join time (oldest at the bottom), horizontal radius encodes
// engagement (more engaged members sit nearer the vertical axis),
// horizontal angle is preserved. Zero denominators (no join spread,
// no engagement spread) are substituted with 1 rather than dividing
// by zero.
func remap(snap *graph.Snapshot, ids []string, positions map[string]geom.Vec3, p Params) {
	radius := TargetRadius(len(ids), p.Spacing)

	minJoin, maxJoin := joinRange(snap, ids)
	joinSpread := float64(maxJoin - minJoin)
	if joinSpread == 0 {
		joinSpread = 1
	}

	maxEng := 0.0
	for _, id := range ids {
		if e := snap.Engagement(id); e > maxEng {
			maxEng = e
		}
	}
	engDenom := math.Log(1 + maxEng)
	if engDenom == 0 {
		engDenom = 1
	}

	for _, id := range ids {
		pos := positions[id]

		join := minJoin
		if m := snap.Members[id]; m.JoinedAt != nil {
			join = *m.JoinedAt
		}
		joinFrac := float64(join-minJoin) / joinSpread
		y := (joinFrac*2 - 1) * radius * p.YCompression

		engFrac := math.Log(1+snap.Engagement(id)) / engDenom
		hr := (1 - math.Pow(engFrac, p.EngagementPower)) * radius
		ang := pos.HorizontalAngle()

		positions[id] = geom.Vec3{
			X: hr * math.Cos(ang),
			Y: y,
			Z: hr * math.Sin(ang),
		}
	}
}

func joinRange(snap *graph.Snapshot, ids []string) (int64, int64) {
	var min, max int64
	first := true
	for _, id := range ids {
		m := snap.Members[id]
		if m.JoinedAt == nil {
			continue
		}
		if first {
			min, max = *m.JoinedAt, *m.JoinedAt
			first = false
			continue
		}
		if *m.JoinedAt < min {
			min = *m.JoinedAt
		}
		if *m.JoinedAt > max {
			max = *m.JoinedAt
		}
	}
	return min, max
}

// attract nudges each member's horizontal position toward the
// mass-weighted centroid of its direct neighbors. Low-mass members
// are pulled harder. All nudges are computed against the pre-pass
// positions and applied together, so iteration order cannot influence
// the result.
func attract(snap *graph.Snapshot, ids []string, positions map[string]geom.Vec3, p Params) {
	next := make(map[string]geom.Vec3, len(ids))
	for _, id := range ids {
		pos := positions[id]
		neighbors := snap.Stats[id].Neighbors
		if len(neighbors) == 0 {
			next[id] = pos
			continue
		}

		var cx, cz, totalMass float64
		for _, n := range neighbors {
			np, ok := positions[n]
			if !ok {
				continue
			}
			m := snap.Members[n].Mass
			cx += np.X * m
			cz += np.Z * m
			totalMass += m
		}
		if totalMass == 0 {
			next[id] = pos
			continue
		}

		pull := p.AttractorStrength / (1 + snap.Members[id].Mass*0.3)
		next[id] = geom.Vec3{
			X: pos.X + (cx/totalMass-pos.X)*pull,
			Y: pos.Y,
			Z: pos.Z + (cz/totalMass-pos.Z)*pull,
		}
	}
	for _, id := range ids {
		positions[id] = next[id]
	}
}
