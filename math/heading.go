// math/heading.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// headings and directions

// NormalizeHeading reduces h to [0,360).
func NormalizeHeading(h float64) float64 {
	h = Mod(h, 360)
	if h < 0 {
		h += 360
	}
	// -1e-15 + 360 rounds to 360.
	if h >= 360 {
		h = 0
	}
	return h
}

// NormalizeTo180 reduces an angle to (-180,180].
func NormalizeTo180(a float64) float64 {
	a = NormalizeHeading(a)
	if a > 180 {
		a -= 360
	}
	return a
}

// HeadingDifference returns the minimum difference between two
// headings. (i.e., the result is always in the range [0,180].)
func HeadingDifference(a float64, b float64) float64 {
	return Abs(NormalizeTo180(b - a))
}

// HeadingSignedTurn returns the shortest signed turn from cur to target;
// positive is a right (clockwise) turn. An exact reversal is reported as
// +180.
func HeadingSignedTurn(cur, target float64) float64 {
	return NormalizeTo180(target - cur)
}

// DecomposeVelocity splits a speed along a heading (measured clockwise
// from north) into east and north components in the same units.
func DecomposeVelocity(speed, heading float64) (vx, vy float64) {
	h := Radians(heading)
	return speed * Sin(h), speed * Cos(h)
}

