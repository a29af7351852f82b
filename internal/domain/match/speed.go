package match

import "slices"

// Speeds is the fixed, ordered set of playback multipliers.
var Speeds = []float64{1.0, 1.5, 2.0, 3.0, 4.0, 5.0}

// NextSpeed returns the multiplier after current, wrapping to the first.
// An unknown current speed moves to the first entry.
func NextSpeed(current float64) float64 {
	i := slices.Index(Speeds, current)
	return Speeds[(i+1)%len(Speeds)]
}
