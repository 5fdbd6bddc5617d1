// sim/aircraft.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"time"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/math"
	"github.com/mmp/airsep/nav"
)

// DirectFixCaptureDistance is how close (in nm) an aircraft flying direct
// to a fix must get before the fix is considered reached.
const DirectFixCaptureDistance = 0.5

type Aircraft struct {
	Callsign av.Callsign
	Category av.Category
	Behavior nav.BehaviorKind
	Perf     av.Characteristics

	nav.FlightState

	// If DirectFix is set, the instructed heading is continuously updated
	// to fly to it.
	DirectFix *av.Position

	// HighlightRank is set by controllers to call attention to an
	// aircraft on their displays; zero means not highlighted.
	HighlightRank int

	// Exactly one of these is set, according to Category.
	Commercial *CommercialInfo
	Military   *MilitaryInfo
	Helicopter *HelicopterInfo
}

type CommercialInfo struct {
	Operator         string
	AircraftType     string
	DepartureAirport string
	ArrivalAirport   string
	EstimatedArrival time.Time
}

type MilitaryInfo struct {
	Squadron     string
	Mission      string
	AircraftType string
}

type HelicopterInfo struct {
	Operator string
	Purpose  string
	// Hovering is updated every tick; it is true when the helicopter is
	// holding its horizontal position.
	Hovering bool
}

// InitialState is the starting state of a new aircraft. If Instructed is
// nil, the aircraft holds its current heading, altitude, and speed. If
// Perf is nil, the category's default characteristics are used.
type InitialState struct {
	Callsign   av.Callsign
	Position   av.Position
	Vector     av.Vector
	Instructed *av.InstructedVector
	Perf       *av.Characteristics
}

func NewCommercial(st InitialState, info CommercialInfo) (*Aircraft, error) {
	ac, err := newAircraft(av.CategoryCommercial, st)
	if err != nil {
		return nil, err
	}
	ac.Commercial = &info
	return ac, nil
}

func NewFighter(st InitialState, info MilitaryInfo) (*Aircraft, error) {
	ac, err := newAircraft(av.CategoryFighter, st)
	if err != nil {
		return nil, err
	}
	ac.Military = &info
	return ac, nil
}

func NewHelicopter(st InitialState, info HelicopterInfo) (*Aircraft, error) {
	ac, err := newAircraft(av.CategoryHelicopter, st)
	if err != nil {
		return nil, err
	}
	info.Hovering = st.Vector.GroundSpeed < nav.HoverSpeed
	ac.Helicopter = &info
	return ac, nil
}

func newAircraft(cat av.Category, st InitialState) (*Aircraft, error) {
	ac := &Aircraft{
		Callsign: st.Callsign,
		Category: cat,
		Behavior: nav.DefaultBehavior(cat),
		Perf:     av.DefaultCharacteristics(cat),
		FlightState: nav.FlightState{
			Position: st.Position,
			Vector:   st.Vector,
			Instructed: av.InstructedVector{
				Heading:     st.Vector.Heading,
				Altitude:    st.Position.Altitude,
				GroundSpeed: st.Vector.GroundSpeed,
			},
		},
	}
	if st.Perf != nil {
		ac.Perf = *st.Perf
		ac.Perf.Category = cat
	}
	if st.Instructed != nil {
		ac.Instructed = *st.Instructed
	} else {
		// Holding the current state; make sure that's something the
		// aircraft can actually fly.
		ac.Instructed.GroundSpeed = ac.Perf.ClampSpeed(ac.Instructed.GroundSpeed)
	}

	if err := ac.Validate(); err != nil {
		return nil, err
	}
	return ac, nil
}

// Validate checks that the aircraft's state is consistent with its
// category and performance envelope.
func (ac *Aircraft) Validate() error {
	if ac == nil {
		return ErrNilAircraft
	}
	if _, err := av.MakeCallsign(string(ac.Callsign)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAircraft, err)
	}

	// State decoded from RPC arguments never went through the Make*
	// constructors.
	p, v, iv := ac.Position, ac.Vector, ac.Instructed
	if _, err := av.MakePosition(p.Latitude.Degrees(), p.Longitude.Degrees(), p.Altitude.Feet()); err != nil {
		return fmt.Errorf("%s: %w: %w", ac.Callsign, ErrInvalidAircraft, err)
	}
	if _, err := av.MakeVector(v.Heading.Degrees(), v.GroundSpeed.Knots(), v.VerticalSpeed.FeetPerMinute()); err != nil {
		return fmt.Errorf("%s: %w: %w", ac.Callsign, ErrInvalidAircraft, err)
	}
	if _, err := av.MakeInstructedVector(iv.Heading.Degrees(), iv.Altitude.Feet(), iv.GroundSpeed.Knots()); err != nil {
		return fmt.Errorf("%s: instructed: %w: %w", ac.Callsign, ErrInvalidAircraft, err)
	}
	if err := ac.Perf.Validate(); err != nil {
		return fmt.Errorf("%s: %w: %w", ac.Callsign, ErrInvalidAircraft, err)
	}
	if ac.Perf.Category != ac.Category {
		return fmt.Errorf("%s: characteristics are for %s, not %s: %w", ac.Callsign, ac.Perf.Category,
			ac.Category, ErrInvalidAircraft)
	}

	nInfo := 0
	for _, set := range []bool{ac.Commercial != nil, ac.Military != nil, ac.Helicopter != nil} {
		if set {
			nInfo++
		}
	}
	if nInfo > 1 {
		return fmt.Errorf("%s: more than one kind of category information: %w", ac.Callsign, ErrInvalidAircraft)
	}

	if ac.Vector.GroundSpeed > ac.Perf.MaxSpeed {
		return fmt.Errorf("%s: ground speed %.0f exceeds %.0f: %w", ac.Callsign, ac.Vector.GroundSpeed,
			ac.Perf.MaxSpeed, ErrSpeedOutsideEnvelope)
	}
	if err := ac.checkSpeed(ac.Instructed.GroundSpeed); err != nil {
		return err
	}
	if ac.Position.Altitude > ac.Perf.MaxAltitude {
		return fmt.Errorf("%s: altitude %.0f: %w", ac.Callsign, ac.Position.Altitude, ErrAltitudeAboveCeiling)
	}
	return ac.checkAltitude(ac.Instructed.Altitude)
}

func (ac *Aircraft) checkSpeed(gs av.GroundSpeed) error {
	if gs < ac.Perf.MinSpeed || gs > ac.Perf.MaxSpeed {
		return fmt.Errorf("%s: %.0f kts not in [%.0f, %.0f]: %w", ac.Callsign, gs, ac.Perf.MinSpeed,
			ac.Perf.MaxSpeed, ErrSpeedOutsideEnvelope)
	}
	return nil
}

func (ac *Aircraft) checkAltitude(alt av.Altitude) error {
	if alt > ac.Perf.MaxAltitude {
		return fmt.Errorf("%s: %.0f ft above ceiling %.0f: %w", ac.Callsign, alt, ac.Perf.MaxAltitude,
			ErrAltitudeAboveCeiling)
	}
	return nil
}

// Track returns the aircraft's state as the conflict detector sees it.
func (ac *Aircraft) Track() *conflict.Track {
	return &conflict.Track{
		Callsign: ac.Callsign,
		Position: ac.Position,
		Vector:   ac.Vector,
	}
}

// advance moves the aircraft forward one tick. It returns true if the
// aircraft reached its direct fix during the tick. If the step fails the
// aircraft is left unchanged.
func (ac *Aircraft) advance(tick int64, hz float64) (reachedFix bool, err error) {
	fs := ac.FlightState
	if ac.DirectFix != nil {
		bearing, _ := nav.TurnAngle(ac.Position, ac.Vector.Heading, *ac.DirectFix)
		if fs.Instructed.Heading, err = av.MakeHeading(bearing); err != nil {
			return false, err
		}
	}

	next, err := ac.Behavior.Step(string(ac.Callsign), tick, fs, ac.Perf, hz)
	if err != nil {
		return false, err
	}
	ac.FlightState = next

	if ac.DirectFix != nil {
		if d := math.NMDistance2LL(ac.Position.Point2LL(), ac.DirectFix.Point2LL()); d < DirectFixCaptureDistance {
			nav.NavLog(string(ac.Callsign), tick, nav.NavLogDirect, "reached fix %s", *ac.DirectFix)
			ac.DirectFix = nil
			reachedFix = true
		}
	}
	if ac.Helicopter != nil {
		ac.Helicopter.Hovering = ac.Behavior == nav.Helicopter && ac.Vector.GroundSpeed < nav.HoverSpeed
	}
	return reachedFix, nil
}

func (ac *Aircraft) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("callsign", string(ac.Callsign)),
		slog.String("category", ac.Category.String()),
		slog.Any("position", ac.Position),
		slog.Any("vector", ac.Vector),
		slog.Float64("instructed_hdg", ac.Instructed.Heading.Degrees()),
		slog.Float64("instructed_alt", ac.Instructed.Altitude.Feet()),
		slog.Float64("instructed_gs", ac.Instructed.GroundSpeed.Knots()),
	}
	if ac.DirectFix != nil {
		attrs = append(attrs, slog.Any("direct_fix", *ac.DirectFix))
	}
	if ac.HighlightRank != 0 {
		attrs = append(attrs, slog.Int("highlight", ac.HighlightRank))
	}
	return slog.GroupValue(attrs...)
}
