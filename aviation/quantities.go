// aviation/quantities.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmp/airsep/math"
)

// The scalar types below should be created with their Make* functions,
// which validate or normalize the value; after that they are plain
// values that can be copied freely.

// Latitude is in degrees, [-90,90].
type Latitude float64

// MakeLatitude clamps v to [-90,90].
func MakeLatitude(v float64) (Latitude, error) {
	if !math.IsFinite(v) {
		return 0, ErrInvalidCoordinate
	}
	return Latitude(math.Clamp(v, -90, 90)), nil
}

func (l Latitude) Degrees() float64 { return float64(l) }

// Longitude is in degrees, (-180,180].
type Longitude float64

// MakeLongitude wraps v into (-180,180].
func MakeLongitude(v float64) (Longitude, error) {
	if !math.IsFinite(v) {
		return 0, ErrInvalidCoordinate
	}
	return Longitude(math.NormalizeTo180(v)), nil
}

func (l Longitude) Degrees() float64 { return float64(l) }

// MinAltitude is the elevation of the lowest known airport (Bar Yehuda,
// near the Dead Sea), in feet.
const MinAltitude = -1266

// Altitude is in feet MSL.
type Altitude float64

func MakeAltitude(ft float64) (Altitude, error) {
	if !math.IsFinite(ft) {
		return 0, ErrInvalidAltitude
	} else if ft < MinAltitude {
		return 0, fmt.Errorf("%.0f ft: %w", ft, ErrAltitudeBelowFloor)
	}
	return Altitude(ft), nil
}

func (a Altitude) Feet() float64 { return float64(a) }

// Heading is in degrees true, [0,360).
type Heading float64

// MakeHeading wraps h into [0,360).
func MakeHeading(h float64) (Heading, error) {
	if !math.IsFinite(h) {
		return 0, ErrInvalidHeading
	}
	return Heading(math.NormalizeHeading(h)), nil
}

func (h Heading) Degrees() float64 { return float64(h) }

// GroundSpeed is in knots and is never negative.
type GroundSpeed float64

func MakeGroundSpeed(kts float64) (GroundSpeed, error) {
	if !math.IsFinite(kts) {
		return 0, ErrNegativeGroundSpeed
	} else if kts < 0 {
		return 0, fmt.Errorf("%.1f kts: %w", kts, ErrNegativeGroundSpeed)
	}
	return GroundSpeed(kts), nil
}

func (g GroundSpeed) Knots() float64 { return float64(g) }

// VerticalSpeed is in feet per minute; positive is a climb.
type VerticalSpeed float64

func MakeVerticalSpeed(fpm float64) (VerticalSpeed, error) {
	if !math.IsFinite(fpm) {
		return 0, ErrNonFiniteVerticalSpeed
	}
	return VerticalSpeed(fpm), nil
}

func (v VerticalSpeed) FeetPerMinute() float64 { return float64(v) }

///////////////////////////////////////////////////////////////////////////
// Callsign

type Callsign string

// MakeCallsign trims surrounding whitespace; callsigns are otherwise
// free-form and case-sensitive.
func MakeCallsign(s string) (Callsign, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidCallsign
	}
	return Callsign(s), nil
}

func (c Callsign) String() string { return string(c) }

///////////////////////////////////////////////////////////////////////////
// Position, Vector, InstructedVector

// Position is an aircraft's current 3D location.
type Position struct {
	Latitude  Latitude
	Longitude Longitude
	Altitude  Altitude
}

func MakePosition(lat, lon, alt float64) (Position, error) {
	var p Position
	var err error
	if p.Latitude, err = MakeLatitude(lat); err != nil {
		return Position{}, err
	}
	if p.Longitude, err = MakeLongitude(lon); err != nil {
		return Position{}, err
	}
	if p.Altitude, err = MakeAltitude(alt); err != nil {
		return Position{}, err
	}
	return p, nil
}

func (p Position) Point2LL() math.Point2LL {
	return math.Point2LL{p.Longitude.Degrees(), p.Latitude.Degrees()}
}

func (p Position) String() string {
	return fmt.Sprintf("%s %.0fft", p.Point2LL().DDString(), p.Altitude.Feet())
}

func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("lat", p.Latitude.Degrees()),
		slog.Float64("lon", p.Longitude.Degrees()),
		slog.Float64("alt", p.Altitude.Feet()))
}

// Vector is an aircraft's current velocity state.
type Vector struct {
	Heading       Heading
	GroundSpeed   GroundSpeed
	VerticalSpeed VerticalSpeed
}

func MakeVector(hdg, gs, vs float64) (Vector, error) {
	var v Vector
	var err error
	if v.Heading, err = MakeHeading(hdg); err != nil {
		return Vector{}, err
	}
	if v.GroundSpeed, err = MakeGroundSpeed(gs); err != nil {
		return Vector{}, err
	}
	if v.VerticalSpeed, err = MakeVerticalSpeed(vs); err != nil {
		return Vector{}, err
	}
	return v, nil
}

func (v Vector) String() string {
	return fmt.Sprintf("hdg %03.0f gs %.0fkt vs %+.0ffpm", v.Heading.Degrees(), v.GroundSpeed.Knots(),
		v.VerticalSpeed.FeetPerMinute())
}

func (v Vector) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("hdg", v.Heading.Degrees()),
		slog.Float64("gs", v.GroundSpeed.Knots()),
		slog.Float64("vs", v.VerticalSpeed.FeetPerMinute()))
}

// InstructedVector is the state an aircraft is steering toward; it may
// differ from the current Vector/Position until the aircraft gets there.
type InstructedVector struct {
	Heading     Heading
	Altitude    Altitude
	GroundSpeed GroundSpeed
}

func MakeInstructedVector(hdg, alt, gs float64) (InstructedVector, error) {
	var iv InstructedVector
	var err error
	if iv.Heading, err = MakeHeading(hdg); err != nil {
		return InstructedVector{}, err
	}
	if iv.Altitude, err = MakeAltitude(alt); err != nil {
		return InstructedVector{}, err
	}
	if iv.GroundSpeed, err = MakeGroundSpeed(gs); err != nil {
		return InstructedVector{}, err
	}
	return iv, nil
}

// Moves shorter than this, away from the poles, use the flat-earth
// offset; over a single tick the two agree to well under a meter.
const (
	planarMaxNM  = 1
	planarMaxLat = 80
)

// PredictPosition returns where an aircraft at pos flying v will be after
// the given number of seconds, following a great-circle track at
// constant ground speed and vertical speed.
func PredictPosition(pos Position, v Vector, seconds float64) (Position, error) {
	dist := v.GroundSpeed.Knots() * seconds / math.SecondsPerHr
	var p math.Point2LL
	if math.Abs(dist) < planarMaxNM && math.Abs(pos.Latitude.Degrees()) < planarMaxLat {
		p = math.OffsetPlanar2LL(pos.Point2LL(), v.Heading.Degrees(), dist)
	} else {
		p = math.Offset2LL(pos.Point2LL(), v.Heading.Degrees(), dist)
	}
	alt := pos.Altitude.Feet() + v.VerticalSpeed.FeetPerMinute()*seconds/60
	return MakePosition(p.Latitude(), p.Longitude(), alt)
}
