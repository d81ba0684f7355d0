package graph

// MassWeights are the per-signal coefficients of the mass formula.
// All are externally settable; zero weights simply mute a signal.
type MassWeights struct {
	Post         float64 `yaml:"post"`
	PostComments float64 `yaml:"post_comments"`
	Direct       float64 `yaml:"direct"`
	Server       float64 `yaml:"server"`
	Neighbors    float64 `yaml:"neighbors"`
}

// DefaultMassWeights returns sensible defaults
func DefaultMassWeights() MassWeights {
	return MassWeights{
		Post:         0.6,
		PostComments: 0.2,
		Direct:       0.35,
		Server:       0.05,
		Neighbors:    0.4,
	}
}

// Mass computes a member's mass from its indexed stats. Mass is used
// as a divisor downstream, so it is floored at 1 and can never be
// zero or negative.
func (w MassWeights) Mass(st *MemberStats, serverComments int) float64 {
	if st == nil {
		return 1
	}
	mass := 1 +
		float64(st.Posts)*w.Post +
		float64(st.PostComments)*w.PostComments +
		float64(st.Direct)*w.Direct +
		float64(serverComments)*w.Server +
		float64(len(st.Neighbors))*w.Neighbors
	if mass < 1 {
		return 1
	}
	return mass
}
