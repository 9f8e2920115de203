// Package turbine models turbine power response, wake interaction and
// spacing penalties shared by the siting optimizer.
package turbine

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	cutInSpeed  = 4.0  // m/s
	ratedSpeed  = 12.0 // m/s, end of the quadratic ramp
	cutOutSpeed = 25.0 // m/s

	// DefaultUnitsPerSite scales the single-unit curve to one site.
	DefaultUnitsPerSite = 2

	// Jensen wake parameters.
	wakeDecay         = 0.075
	thrustCoefficient = 0.88

	// DefaultRotorDiameterKm is the reference rotor diameter (160 m).
	DefaultRotorDiameterKm = 0.16

	// FallbackCapacityFactor applies when no wind data is available.
	FallbackCapacityFactor = 0.25

	capacityFactorCap    = 0.50
	spacingPenaltyFactor = 5.0
)

// Power returns the modelled output of a single generating unit at
// hub-height wind speed v in m/s. Output is zero below cut-in and at
// or above cut-out, follows a quadratic ramp up to the rated speed and
// a shallow linear segment beyond it.
func Power(v float64) float64 {
	switch {
	case v < cutInSpeed:
		return 0
	case v < ratedSpeed:
		d := v - cutInSpeed
		return 0.5 * d * d
	case v < cutOutSpeed:
		return 40 + 1.2*(v-ratedSpeed)
	default:
		return 0
	}
}

// SitePower returns the output of a site with the given number of
// generating units. Non-positive unit counts fall back to
// DefaultUnitsPerSite.
func SitePower(v float64, units int) float64 {
	if units <= 0 {
		units = DefaultUnitsPerSite
	}
	return Power(v) * float64(units)
}

// CapacityFactor estimates an annual capacity factor from the mean
// wind speed, capped at 0.50.
func CapacityFactor(v float64) float64 {
	cf := v / ratedSpeed * 0.45
	if cf > capacityFactorCap {
		return capacityFactorCap
	}
	return cf
}

// SpacingPenalty sums quadratic penalties over unordered pairs of
// positions closer than minKm. Positions are planar kilometers; pairs
// at or beyond the minimum contribute nothing.
func SpacingPenalty(pts []orb.Point, minKm float64) float64 {
	if minKm <= 0 {
		return 0
	}
	var total float64
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			d := planar.Distance(pts[i], pts[j])
			if d < minKm {
				r := (minKm - d) / minKm
				total += spacingPenaltyFactor * r * r
			}
		}
	}
	return total
}

// WakeDeficit returns the wind speed reduction in m/s at position down
// caused by the wake of a turbine at position up, with the wind blowing
// toward windDirDeg and windSpeed the free-stream speed at the upstream
// turbine. Positions are planar kilometers. The wake is a Jensen cone
// widening downwind at the decay constant, with a Gaussian falloff
// across the cone; positions upwind of the source see no deficit.
func WakeDeficit(up, down orb.Point, windDirDeg, windSpeed, rotorKm float64) float64 {
	dx := down[0] - up[0]
	dy := down[1] - up[1]
	if dx == 0 && dy == 0 {
		return 0
	}
	if rotorKm <= 0 {
		rotorKm = DefaultRotorDiameterKm
	}

	theta := windDirDeg * math.Pi / 180
	downwind := dx*math.Cos(theta) + dy*math.Sin(theta)
	if downwind <= 0 {
		return 0
	}
	crosswind := -dx*math.Sin(theta) + dy*math.Cos(theta)

	radius := rotorKm / 2
	halfWidth := radius + wakeDecay*downwind
	if math.Abs(crosswind) > halfWidth {
		return 0
	}

	ratio := radius / halfWidth
	falloff := math.Exp(-(crosswind * crosswind) / (halfWidth * halfWidth))
	return (1 - math.Sqrt(1-thrustCoefficient)) * ratio * ratio * falloff * windSpeed
}
