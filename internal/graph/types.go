package graph

import "constella/orrery/internal/geom"

// Member is a lightweight node representation decoupled from DB types.
// Timestamps are unix seconds; nil means the member never reported one.
type Member struct {
	ID             string
	Username       string
	JoinedAt       *int64
	SoberSince     *int64
	ServerComments int

	// Mass is derived during snapshot indexing; Position is the last
	// accepted layout position, if any.
	Mass     float64
	Position geom.Vec3

	// Visual is owned by the renderer and carried through untouched.
	Visual Visual
}

// Visual is the renderer's animation state for a member: where the member
// is currently drawn and at what opacity and scale. The layout core never
// interprets it; Pos converges toward Position on the renderer's side.
type Visual struct {
	Pos     geom.Vec3 `json:"pos"`
	Opacity float64   `json:"opacity"`
	Scale   float64   `json:"scale"`
}

// Post is an authored post with its received comment total.
type Post struct {
	ID           string
	AuthorID     string
	CommentCount int
}

// Comment is a directed interaction between two members. Body is the
// free-text content, carried but never interpreted here.
type Comment struct {
	ID        string
	FromID    string
	ToID      string
	CreatedAt int64
	Body      string
}

// RiskLevel classifies an externally supplied risk prediction.
type RiskLevel int

const (
	RiskUnknown RiskLevel = iota
	RiskLow
	RiskWatch
	RiskHigh
)

func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "low"
	case RiskWatch:
		return "watch"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseRiskLevel maps a stored level string back to its enum value.
// Unrecognized input parses as RiskUnknown.
func ParseRiskLevel(s string) RiskLevel {
	switch s {
	case "low":
		return RiskLow
	case "watch":
		return RiskWatch
	case "high":
		return RiskHigh
	default:
		return RiskUnknown
	}
}

// RiskScore is a per-member prediction consumed from an external
// collaborator. Members at RiskUnknown are excluded from risk-based
// gravity adjustment.
type RiskScore struct {
	Risk  float64   `json:"risk"`
	Level RiskLevel `json:"level"`
}
