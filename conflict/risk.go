// conflict/risk.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	"github.com/mmp/airsep/math"
)

const (
	// Closest approaches within this many seconds get full weight; after
	// that the weight falls linearly to minTimeWeight at the prediction
	// horizon.
	fullWeightTime = 60
	minTimeWeight  = 0.2

	// Current separation below minimums scales risk by this factor.
	urgencyFactor = 1.5
)

// timeWeight discounts conflicts that are further in the future. Times
// outside [0,maxT] have no weight.
func timeWeight(t, maxT float64) float64 {
	if t < 0 || t > maxT {
		return 0
	} else if t <= fullWeightTime || maxT <= fullWeightTime {
		return 1
	}
	return 1 - (1-minTimeWeight)*(t-fullWeightTime)/(maxT-fullWeightTime)
}

// horizontalRisk is zero at or beyond the minimum, ramps linearly to 0.4
// at 3/5 of it (3 nm for the standard 5 nm), and then quadratically up
// to 1 at zero distance.
func horizontalRisk(d, minSep float64) float64 {
	inner := minSep * 3 / 5
	switch {
	case d >= minSep:
		return 0
	case d >= inner:
		return 0.4 * (minSep - d) / (minSep - inner)
	default:
		factor := (inner - d) / inner
		return 0.4 + 0.6*factor*factor
	}
}

// verticalRisk is the vertical counterpart of horizontalRisk: linear to
// 0.5 at half the minimum (500 ft for the standard 1000 ft), then
// quadratic up to 1.
func verticalRisk(d, minSep float64) float64 {
	inner := minSep / 2
	switch {
	case d >= minSep:
		return 0
	case d >= inner:
		return 0.5 * (minSep - d) / (minSep - inner)
	default:
		factor := (inner - d) / inner
		return 0.5 + 0.5*factor*factor
	}
}

// urgency amplifies risk for aircraft that are already inside either
// minimum right now, wherever they are headed.
func urgency(ca closestApproach, cfg Config) float64 {
	if ca.CurrentHorizontalNM < cfg.MinHorizontalSeparationNM || ca.CurrentVerticalFt < cfg.MinVerticalSeparationFt {
		return urgencyFactor
	}
	return 1
}

func scoreRisk(ca closestApproach, cfg Config) RiskLevel {
	// The weight takes the unclamped time: pairs that are diverging or
	// whose closest approach is past the horizon score zero.
	w := 1.0 // with no relative motion, the separation never changes
	if ca.finite() {
		w = timeWeight(ca.T, cfg.MaxPredictionTime)
	}

	r := max(horizontalRisk(ca.HorizontalNM, cfg.MinHorizontalSeparationNM),
		verticalRisk(ca.VerticalFt, cfg.MinVerticalSeparationFt))
	return RiskLevel(math.Clamp(r*w*urgency(ca, cfg)*100, 0, 100))
}

// predictsViolation reports whether minimums will be lost within the
// prediction horizon.
func predictsViolation(ca closestApproach, cfg Config) bool {
	below := ca.HorizontalNM < cfg.MinHorizontalSeparationNM || ca.VerticalFt < cfg.MinVerticalSeparationFt
	if !ca.finite() {
		return below
	}
	return ca.T >= 0 && ca.T <= cfg.MaxPredictionTime && below
}
