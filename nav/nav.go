// nav/nav.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/math"
	"github.com/mmp/airsep/util"
)

// BehaviorKind selects the kinematic update rules used for an aircraft.
type BehaviorKind int

const (
	FixedWing BehaviorKind = iota
	Helicopter
)

func (k BehaviorKind) String() string {
	switch k {
	case FixedWing:
		return "fixed-wing"
	case Helicopter:
		return "helicopter"
	default:
		return fmt.Sprintf("BehaviorKind(%d)", int(k))
	}
}

// DefaultBehavior returns the behavior aircraft of the given category fly
// with unless told otherwise.
func DefaultBehavior(c av.Category) BehaviorKind {
	if c == av.CategoryHelicopter {
		return Helicopter
	}
	return FixedWing
}

const (
	// HoverSpeed is the ground speed below which a helicopter holds its
	// horizontal position.
	HoverSpeed = 5

	// AltitudeTolerance is how close (in feet) an aircraft must be to its
	// assigned altitude to be considered level there.
	AltitudeTolerance = 1
)

// Rotary-wing aircraft are more agile than their envelope numbers
// suggest; these scale the per-tick limits.
const (
	helicopterTurnFactor  = 1.5
	helicopterAccelFactor = 1.2
	helicopterClimbFactor = 1.8
)

func (k BehaviorKind) turnFactor() float64 {
	return util.Select(k == Helicopter, helicopterTurnFactor, 1.0)
}

func (k BehaviorKind) accelFactor() float64 {
	return util.Select(k == Helicopter, helicopterAccelFactor, 1.0)
}

func (k BehaviorKind) climbFactor() float64 {
	return util.Select(k == Helicopter, helicopterClimbFactor, 1.0)
}

// NextPosition integrates pos forward by one tick (1/hz seconds) flying
// v. Helicopters below HoverSpeed only change altitude. An error is
// returned if the new altitude would be below the floor.
func (k BehaviorKind) NextPosition(pos av.Position, v av.Vector, hz float64) (av.Position, error) {
	dt := 1 / hz

	if k == Helicopter && v.GroundSpeed < HoverSpeed {
		alt, err := av.MakeAltitude(pos.Altitude.Feet() + v.VerticalSpeed.FeetPerMinute()*dt/60)
		if err != nil {
			return pos, err
		}
		pos.Altitude = alt
		return pos, nil
	}

	return av.PredictPosition(pos, v, dt)
}

// NextHeading turns from cur toward target the short way around by at
// most maxTurnRate degrees, returning target exactly once it is within
// reach.
func (k BehaviorKind) NextHeading(cur, target av.Heading, maxTurnRate float64) av.Heading {
	rate := maxTurnRate * k.turnFactor()
	turn := math.HeadingSignedTurn(cur.Degrees(), target.Degrees())

	if math.Abs(turn) <= rate {
		return target
	}
	// cur and rate are finite, so this can't fail.
	h, _ := av.MakeHeading(cur.Degrees() + math.Sign(turn)*rate)
	return h
}

// NextGroundSpeed accelerates or decelerates from cur toward target by at
// most maxAccel knots.
func (k BehaviorKind) NextGroundSpeed(cur, target av.GroundSpeed, maxAccel float64) av.GroundSpeed {
	accel := maxAccel * k.accelFactor()
	delta := target.Knots() - cur.Knots()

	if math.Abs(delta) <= accel {
		return target
	}
	return av.GroundSpeed(cur.Knots() + math.Sign(delta)*accel)
}

// NextVerticalSpeed returns the vertical speed to fly for the next tick in
// order to close on targetAlt without passing it: the rate that arrives
// exactly at the end of the tick if that is within maxClimbRate (feet per
// minute) and maxClimbRate otherwise. It is zero when already level.
func (k BehaviorKind) NextVerticalSpeed(curAlt, targetAlt av.Altitude, maxClimbRate float64, hz float64) av.VerticalSpeed {
	delta := targetAlt.Feet() - curAlt.Feet()
	if math.Abs(delta) <= AltitudeTolerance {
		return 0
	}

	rate := maxClimbRate * k.climbFactor()
	// Feet per minute needed to cover delta in 1/hz seconds.
	needed := delta * 60 * hz
	return av.VerticalSpeed(math.Clamp(needed, -rate, rate))
}

// TurnAngle returns the bearing from pos to fix, for flying direct to it,
// along with the signed turn from heading needed to get there (positive
// is to the right).
func TurnAngle(pos av.Position, heading av.Heading, fix av.Position) (bearing float64, turn float64) {
	bearing = math.Heading2LL(pos.Point2LL(), fix.Point2LL())
	turn = math.HeadingSignedTurn(heading.Degrees(), bearing)
	return
}
