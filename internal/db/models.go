package db

// Member represents a row in the members table
type Member struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	JoinedAt       *int64 `json:"joined_at"`   // Unix seconds, nil if unknown
	SoberSince     *int64 `json:"sober_since"` // Unix seconds, nil if not tracked
	ServerComments int    `json:"server_comments"`
}

// Post represents a row in the posts table
type Post struct {
	ID           string `json:"id"`
	AuthorID     string `json:"author_id"`
	CommentCount int    `json:"comment_count"`
}

// Comment represents a row in the comments table
type Comment struct {
	ID        string `json:"id"`
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	CreatedAt int64  `json:"created_at"` // Unix seconds
	Body      string `json:"body"`
}

// RiskScore represents a row in the risk_scores table
type RiskScore struct {
	MemberID string  `json:"member_id"`
	Risk     float64 `json:"risk"`  // 0..1, higher = higher predicted risk
	Level    string  `json:"level"` // "unknown", "low", "watch", "high"
}

// Position represents a row in the layout_positions table
type Position struct {
	MemberID  string  `json:"member_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	UpdatedAt int64   `json:"updated_at"` // Unix seconds
}

// FitnessRecord represents a row in the fitness_history table
type FitnessRecord struct {
	Session     int     `json:"session"`
	Seed        string  `json:"seed"`
	Fitness     float64 `json:"fitness"`
	Cohesion    float64 `json:"cohesion"`
	Stability   float64 `json:"stability"`
	Temperature float64 `json:"temperature"`
	RecordedAt  int64   `json:"recorded_at"` // Unix seconds
}

// LayoutState represents the single-row layout_state table tracking the
// refinement session counter and the currently installed seed.
type LayoutState struct {
	Session  int    `json:"session"`
	BestSeed string `json:"best_seed"`
}
