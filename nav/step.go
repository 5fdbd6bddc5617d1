// nav/step.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/math"
)

// FlightState is the kinematic state of a single aircraft.
type FlightState struct {
	Position   av.Position
	Vector     av.Vector
	Instructed av.InstructedVector
}

// Step advances fs by one tick. The vector is updated first, moving
// toward the instructed vector within the limits of the envelope, and
// then the position is integrated using the new vector. If the new
// position can't be represented, fs is returned unchanged along with the
// error.
func (k BehaviorKind) Step(callsign string, tick int64, fs FlightState, perf av.Characteristics, hz float64) (FlightState, error) {
	next := fs

	next.Vector.Heading = k.NextHeading(fs.Vector.Heading, fs.Instructed.Heading, perf.MaxTurnRate/hz)
	next.Vector.GroundSpeed = k.NextGroundSpeed(fs.Vector.GroundSpeed, perf.ClampSpeed(fs.Instructed.GroundSpeed),
		perf.MaxAcceleration/hz)
	targetAlt := math.Min(fs.Instructed.Altitude, perf.MaxAltitude)
	next.Vector.VerticalSpeed = k.NextVerticalSpeed(fs.Position.Altitude, targetAlt, perf.MaxClimbRate, hz)

	if next.Vector.Heading != fs.Vector.Heading {
		NavLog(callsign, tick, NavLogHeading, "current=%.1f target=%.1f next=%.1f",
			fs.Vector.Heading, fs.Instructed.Heading, next.Vector.Heading)
	}
	if next.Vector.GroundSpeed != fs.Vector.GroundSpeed {
		NavLog(callsign, tick, NavLogSpeed, "current=%.1f target=%.1f next=%.1f",
			fs.Vector.GroundSpeed, fs.Instructed.GroundSpeed, next.Vector.GroundSpeed)
	}

	pos, err := k.NextPosition(fs.Position, next.Vector, hz)
	if err != nil {
		return fs, err
	}

	// The vertical speed was chosen to arrive at the target altitude at
	// the end of this tick; remove any floating-point residue so that we
	// end up level rather than oscillating around it.
	before, after := targetAlt.Feet()-fs.Position.Altitude.Feet(), targetAlt.Feet()-pos.Altitude.Feet()
	if next.Vector.VerticalSpeed != 0 && (math.Sign(before) != math.Sign(after) || math.Abs(after) <= AltitudeTolerance) {
		NavLog(callsign, tick, NavLogAltitude, "level at %.0f", targetAlt)
		pos.Altitude = targetAlt
	}
	next.Position = pos

	NavLog(callsign, tick, NavLogState, "pos=%s vec=%s", next.Position, next.Vector)

	return next, nil
}
