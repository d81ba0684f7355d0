package graph

import "math"

// HealthBreakdown shows the sub-scores of the community health formula.
type HealthBreakdown struct {
	Connectivity float64 `json:"connectivity"`
	Cohesion     float64 `json:"cohesion"`
	Activity     float64 `json:"activity"`
	Resilience   float64 `json:"resilience"`
}

// HealthReport is the composite health result together with the
// analyses that fed it.
type HealthReport struct {
	Score      float64          `json:"score"`
	Breakdown  HealthBreakdown  `json:"breakdown"`
	Connectors *ConnectorReport `json:"connectors"`
	Quiet      *ActivityReport  `json:"quiet"`
}

// CommunityHealth blends four structural signals into one 0..1 score:
// how few members sit alone, how much of the community the largest
// neighborhood holds, how few members have gone quiet, and how little
// the graph depends on single points of connection.
func CommunityHealth(s *Snapshot, quietDays int) *HealthReport {
	connectors := FindConnectors(s)
	quiet := ComputeActivity(s, quietDays)

	total := float64(s.Len())
	if total == 0 {
		return &HealthReport{Connectors: connectors, Quiet: quiet}
	}

	isolated, largest := 0, 0
	for _, nh := range s.Neighborhoods() {
		if nh.Size() == 1 {
			isolated++
		}
		if nh.Size() > largest {
			largest = nh.Size()
		}
	}

	connectivity := clamp(1-math.Min(float64(isolated)/total, 0.2)*5, 0, 1)
	cohesion := clamp(float64(largest)/total, 0, 1)
	activity := clamp(1-math.Min(float64(quiet.QuietCount)/total, 0.5)*2, 0, 1)
	resilience := clamp(1-math.Min(float64(connectors.ConnectorCount)/total, 0.05)*20, 0, 1)

	score := 0.30*connectivity + 0.25*cohesion + 0.25*activity + 0.20*resilience

	return &HealthReport{
		Score: score,
		Breakdown: HealthBreakdown{
			Connectivity: connectivity,
			Cohesion:     cohesion,
			Activity:     activity,
			Resilience:   resilience,
		},
		Connectors: connectors,
		Quiet:      quiet,
	}
}

func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
