package layout

import (
	"fmt"
	"math"

	"constella/orrery/internal/geom"
)

// Params holds every externally settable constant of the layout
// codec, fitness scoring, and refinement loop. The zero value is not
// usable; start from DefaultParams and override.
type Params struct {
	// Codec geometry
	NHRadiusBase      float64 `yaml:"nh_radius_base"`
	NHRadiusScale     float64 `yaml:"nh_radius_scale"`
	LocalRadiusBase   float64 `yaml:"local_radius_base"`
	LocalRadiusScale  float64 `yaml:"local_radius_scale"`
	GravityFactor     float64 `yaml:"gravity_factor"`
	Spacing           float64 `yaml:"spacing"`
	EngagementPower   float64 `yaml:"engagement_power"`
	YCompression      float64 `yaml:"y_compression"`
	AttractorStrength float64 `yaml:"attractor_strength"`

	// Risk blend: how much of gravity comes from mass vs. the
	// external risk signal, for members with a known risk level.
	RiskMassWeight   float64 `yaml:"risk_mass_weight"`
	RiskSignalWeight float64 `yaml:"risk_signal_weight"`

	// Fitness
	PairGravityScale float64 `yaml:"pair_gravity_scale"`
	CohesionScale    float64 `yaml:"cohesion_scale"`
	StabilityScale   float64 `yaml:"stability_scale"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	StabilityWeight  float64 `yaml:"stability_weight"`

	// Refinement
	AnnealRate   float64 `yaml:"anneal_rate"`
	Variants     int     `yaml:"variants"`
	HistoryLimit int     `yaml:"history_limit"`
}

// DefaultParams returns sensible defaults
func DefaultParams() Params {
	return Params{
		NHRadiusBase:      60,
		NHRadiusScale:     6,
		LocalRadiusBase:   10,
		LocalRadiusScale:  2.2,
		GravityFactor:     0.08,
		Spacing:           14,
		EngagementPower:   1.6,
		YCompression:      1.0,
		AttractorStrength: 0.35,
		RiskMassWeight:    0.3,
		RiskSignalWeight:  0.7,
		PairGravityScale:  1.0,
		CohesionScale:     0.02,
		StabilityScale:    0.05,
		CohesionWeight:    0.6,
		StabilityWeight:   0.4,
		AnnealRate:        0.93,
		Variants:          5,
		HistoryLimit:      120,
	}
}

// Validate rejects configurations that would divide by zero or leave
// the refinement loop without explore candidates.
func (p Params) Validate() error {
	if p.Spacing <= 0 {
		return fmt.Errorf("spacing must be positive, got %v", p.Spacing)
	}
	if p.NHRadiusBase < 0 || p.LocalRadiusBase < 0 {
		return fmt.Errorf("radius bases must not be negative")
	}
	if p.EngagementPower <= 0 {
		return fmt.Errorf("engagement power must be positive, got %v", p.EngagementPower)
	}
	if p.AnnealRate <= 0 || p.AnnealRate > 1 {
		return fmt.Errorf("anneal rate must be in (0,1], got %v", p.AnnealRate)
	}
	if p.Variants < 2 {
		return fmt.Errorf("need at least 2 variants per cycle, got %d", p.Variants)
	}
	if p.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1, got %d", p.HistoryLimit)
	}
	return nil
}

// TargetRadius is the world radius for a population of the given
// size. Cube-root growth keeps average nearest-neighbor spacing
// constant as the population grows.
func TargetRadius(count int, spacing float64) float64 {
	if count < 1 {
		count = 1
	}
	return spacing * math.Cbrt(float64(count))
}

// WorldBounds returns a root box guaranteed to contain every position
// the codec can emit for a population of the given size. Octree roots
// must be at least this large or bulk inserts will be refused.
func WorldBounds(count int, p Params) geom.Box {
	half := TargetRadius(count, p.Spacing) * 1.02
	if p.YCompression > 1 {
		half *= p.YCompression
	}
	return geom.NewBox(geom.Vec3{}, half)
}
