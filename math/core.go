// math/core.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

// Everything in this package is float64: separation prediction compares
// small differences of large numbers and results have to be reproducible
// across runs.

func Sin(a float64) float64      { return gomath.Sin(a) }
func Cos(a float64) float64      { return gomath.Cos(a) }
func Atan2(y, x float64) float64 { return gomath.Atan2(y, x) }
func Sqrt(a float64) float64     { return gomath.Sqrt(a) }
func Hypot(x, y float64) float64 { return gomath.Hypot(x, y) }
func Floor(v float64) float64    { return gomath.Floor(v) }
func Round(v float64) float64    { return gomath.Round(v) }

func Mod(a, b float64) float64 {
	return gomath.Mod(a, b)
}

func SafeASin(a float64) float64 {
	return gomath.Asin(Clamp(a, -1, 1))
}

func Sign(v float64) float64 {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

func IsFinite(v float64) bool {
	return !gomath.IsInf(v, 0) && !gomath.IsNaN(v)
}

// Inf returns positive infinity.
func Inf() float64 {
	return gomath.Inf(1)
}

///////////////////////////////////////////////////////////////////////////
// Vec3

// Vec3 is a 3D vector in a local east/north/up frame.
type Vec3 [3]float64

func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{s * v[0], s * v[1], s * v[2]} }

func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

// HorizontalLength returns the length of the east/north components.
func (v Vec3) HorizontalLength() float64 { return Hypot(v[0], v[1]) }
