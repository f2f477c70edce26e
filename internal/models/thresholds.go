package models

// Default analysis thresholds.
const (
	DefaultGradientThreshold = 0.02  // 2%
	DefaultMinClimbDistance  = 100.0 // meters
	DefaultMinClimbElevation = 10.0  // meters
	DefaultSteepThreshold    = 0.06
	DefaultFlatSpeedKmh      = 25.0
	DefaultClimbSpeedKmh     = 15.0
	DefaultSteepSpeedKmh     = 8.0
)

// Thresholds tune climb detection and the ride time model.
// A zero field means "use the default".
type Thresholds struct {
	GradientThreshold float64 `json:"gradient_threshold"`
	MinClimbDistance  float64 `json:"min_climb_distance_meters"`
	MinClimbElevation float64 `json:"min_climb_elevation_meters"`
	SteepThreshold    float64 `json:"steep_gradient_threshold"`
	FlatSpeedKmh      float64 `json:"flat_speed_kmh"`
	ClimbSpeedKmh     float64 `json:"climb_speed_kmh"`
	SteepSpeedKmh     float64 `json:"steep_speed_kmh"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		GradientThreshold: DefaultGradientThreshold,
		MinClimbDistance:  DefaultMinClimbDistance,
		MinClimbElevation: DefaultMinClimbElevation,
		SteepThreshold:    DefaultSteepThreshold,
		FlatSpeedKmh:      DefaultFlatSpeedKmh,
		ClimbSpeedKmh:     DefaultClimbSpeedKmh,
		SteepSpeedKmh:     DefaultSteepSpeedKmh,
	}
}

// WithDefaults fills every non-positive field from DefaultThresholds.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.GradientThreshold <= 0 {
		t.GradientThreshold = d.GradientThreshold
	}
	if t.MinClimbDistance <= 0 {
		t.MinClimbDistance = d.MinClimbDistance
	}
	if t.MinClimbElevation <= 0 {
		t.MinClimbElevation = d.MinClimbElevation
	}
	if t.SteepThreshold <= 0 {
		t.SteepThreshold = d.SteepThreshold
	}
	if t.FlatSpeedKmh <= 0 {
		t.FlatSpeedKmh = d.FlatSpeedKmh
	}
	if t.ClimbSpeedKmh <= 0 {
		t.ClimbSpeedKmh = d.ClimbSpeedKmh
	}
	if t.SteepSpeedKmh <= 0 {
		t.SteepSpeedKmh = d.SteepSpeedKmh
	}
	return t
}
