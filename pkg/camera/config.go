package camera

import "math"

// Config collects the rig's tunable constants. The fit margins and
// distance floors are empirical framing values carried over from long use;
// they control how much breathing room a fitted model gets, not anything
// physically derived, so they are exposed as configuration rather than
// recomputed.
type Config struct {
	// FOV is the perspective vertical field of view in radians.
	FOV float64

	// FrustumSize is the orthographic camera's vertical extent at zoom 1.
	FrustumSize float64

	// PerspectiveFitMargin scales the perspective fit distance
	// (distance = maxDim / sin(fov/2) * margin).
	PerspectiveFitMargin float64

	// OrthoFitFactor scales the orthographic fit distance
	// (distance = maxDim * factor).
	OrthoFitFactor float64

	// PairFitMargin is applied twice when framing two models side by
	// side (distance = maxDim * margin * margin).
	PairFitMargin float64

	// MinPairDistance floors the side-by-side camera distance.
	MinPairDistance float64

	// CenterTolerance is how far the combined center of a model pair may
	// sit from the origin before both models are re-centered.
	CenterTolerance float64

	// TargetDriftLimit is the distance from origin beyond which the
	// orbit target is considered drifted and forcibly reset.
	TargetDriftLimit float64

	// AutoRotateBaseRate is the azimuth increment in radians per second
	// at speed 1.
	AutoRotateBaseRate float64

	// AutoRotateSpeed is the default auto-rotate speed multiplier.
	AutoRotateSpeed float64

	// DragSensitivity converts pointer pixels to radians for the manual
	// spherical control.
	DragSensitivity float64

	// MinDistance and MaxDistance clamp zooming.
	MinDistance float64
	MaxDistance float64

	// Damping is the orbit controller's velocity decay factor.
	Damping float64
}

// DefaultConfig returns the rig defaults.
func DefaultConfig() Config {
	return Config{
		FOV:                  50 * math.Pi / 180,
		FrustumSize:          10,
		PerspectiveFitMargin: 0.75,
		OrthoFitFactor:       2.0,
		PairFitMargin:        1.5,
		MinPairDistance:      30,
		CenterTolerance:      0.1,
		TargetDriftLimit:     1000,
		AutoRotateBaseRate:   0.01,
		AutoRotateSpeed:      1,
		DragSensitivity:      0.005,
		MinDistance:          0.1,
		MaxDistance:          2000,
		Damping:              0.9,
	}
}
