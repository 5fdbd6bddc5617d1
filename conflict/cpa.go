// conflict/cpa.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	"log/slog"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/math"
)

// Track is the kinematic state of one aircraft as seen by the detector.
type Track struct {
	Callsign av.Callsign
	Position av.Position
	Vector   av.Vector
}

func (t Track) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("callsign", string(t.Callsign)),
		slog.Any("position", t.Position),
		slog.Any("vector", t.Vector))
}

// Relative velocities smaller than this (in m/s) are treated as zero:
// the aircraft keep their current separation indefinitely.
const minRelativeSpeed = 1e-9

// closestApproach is the result of projecting two tracks forward in a
// local Cartesian frame.
type closestApproach struct {
	// T is the unclamped time of closest approach in seconds; it is +Inf
	// when the relative velocity is (nearly) zero.
	T float64
	// TClamped is T limited to [0, max prediction time]; the closest
	// distances are evaluated at this time.
	TClamped float64

	HorizontalNM float64
	VerticalFt   float64

	CurrentHorizontalNM float64
	CurrentVerticalFt   float64
}

func (c closestApproach) finite() bool {
	return math.IsFinite(c.T)
}

// velocityMPS returns the east/north/up velocity in meters per second.
func velocityMPS(v av.Vector) math.Vec3 {
	vx, vy := math.DecomposeVelocity(math.KnotsToMetersPerSecond(v.GroundSpeed.Knots()), v.Heading.Degrees())
	return math.Vec3{vx, vy, math.FPMToMetersPerSecond(v.VerticalSpeed.FeetPerMinute())}
}

// computeClosestApproach works in a flat frame centered between the two
// aircraft; the positions are at most the pre-filter distance apart so
// the flat-earth error is negligible.
func computeClosestApproach(a, b *Track, maxT float64) closestApproach {
	east, north := math.LocalOffsetMeters(a.Position.Point2LL(), b.Position.Point2LL())
	dAlt := b.Position.Altitude.Feet() - a.Position.Altitude.Feet()
	r := math.Vec3{east, north, math.FeetToMeters(dAlt)}
	v := velocityMPS(b.Vector).Sub(velocityMPS(a.Vector))

	ca := closestApproach{
		CurrentHorizontalNM: math.MetersToNM(r.HorizontalLength()),
		CurrentVerticalFt:   math.Abs(dAlt),
	}

	vv := v.Dot(v)
	if math.Sqrt(vv) < minRelativeSpeed {
		// Not converging; current separation is all there is.
		ca.T = math.Inf()
		ca.HorizontalNM, ca.VerticalFt = ca.CurrentHorizontalNM, ca.CurrentVerticalFt
		return ca
	}

	ca.T = -r.Dot(v) / vv
	ca.TClamped = math.Clamp(ca.T, 0, maxT)

	c := r.Add(v.Scale(ca.TClamped))
	ca.HorizontalNM = math.MetersToNM(c.HorizontalLength())
	ca.VerticalFt = math.MetersToFeet(math.Abs(c[2]))
	return ca
}
