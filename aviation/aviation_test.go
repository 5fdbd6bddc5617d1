// aviation/aviation_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/mmp/airsep/math"
)

func TestAltitudeFloor(t *testing.T) {
	tests := []struct {
		ft  float64
		err error
	}{
		{-1300, ErrAltitudeBelowFloor},
		{-1266.001, ErrAltitudeBelowFloor},
		{-1266, nil},
		{0, nil},
		{45000, nil},
		{gomath.NaN(), ErrInvalidAltitude},
	}
	for _, tt := range tests {
		alt, err := MakeAltitude(tt.ft)
		if !errors.Is(err, tt.err) {
			t.Errorf("MakeAltitude(%v) error = %v, expected %v", tt.ft, err, tt.err)
		}
		if err == nil && alt.Feet() != tt.ft {
			t.Errorf("MakeAltitude(%v) = %v", tt.ft, alt)
		}
	}
}

func TestGroundSpeed(t *testing.T) {
	if _, err := MakeGroundSpeed(-1); !errors.Is(err, ErrNegativeGroundSpeed) {
		t.Errorf("MakeGroundSpeed(-1) error = %v, expected ErrNegativeGroundSpeed", err)
	}
	if gs, err := MakeGroundSpeed(0); err != nil || gs != 0 {
		t.Errorf("MakeGroundSpeed(0) = %v, %v", gs, err)
	}
	if gs, err := MakeGroundSpeed(250); err != nil || gs.Knots() != 250 {
		t.Errorf("MakeGroundSpeed(250) = %v, %v", gs, err)
	}
}

func TestHeadingWrap(t *testing.T) {
	for _, h := range [][2]float64{{0, 0}, {360, 0}, {-90, 270}, {725, 5}, {359.5, 359.5}} {
		if got, err := MakeHeading(h[0]); err != nil || got.Degrees() != h[1] {
			t.Errorf("MakeHeading(%v) = %v, %v, expected %v", h[0], got, err, h[1])
		}
	}
	for theta := -1000.0; theta < 1000; theta += 7.3 {
		h, err := MakeHeading(theta)
		if err != nil || h < 0 || h >= 360 {
			t.Errorf("MakeHeading(%v) = %v, %v, expected [0,360)", theta, h, err)
		}
	}

	// Non-finite headings are rejected rather than turned into north.
	for _, theta := range []float64{gomath.NaN(), gomath.Inf(1), gomath.Inf(-1)} {
		if _, err := MakeHeading(theta); !errors.Is(err, ErrInvalidHeading) {
			t.Errorf("MakeHeading(%v) error = %v", theta, err)
		}
		if _, err := MakeVector(theta, 250, 0); !errors.Is(err, ErrInvalidHeading) {
			t.Errorf("MakeVector(%v, 250, 0) error = %v", theta, err)
		}
		if _, err := MakeInstructedVector(theta, 10000, 250); !errors.Is(err, ErrInvalidHeading) {
			t.Errorf("MakeInstructedVector(%v, 10000, 250) error = %v", theta, err)
		}
	}
}

func TestLatLong(t *testing.T) {
	if lat, _ := MakeLatitude(95); lat != 90 {
		t.Errorf("MakeLatitude(95) = %v, expected clamp to 90", lat)
	}
	if lat, _ := MakeLatitude(-100); lat != -90 {
		t.Errorf("MakeLatitude(-100) = %v, expected clamp to -90", lat)
	}
	for _, l := range [][2]float64{{180, 180}, {-180, 180}, {190, -170}, {-190, 170}, {139.5, 139.5}} {
		if lon, _ := MakeLongitude(l[0]); lon.Degrees() != l[1] {
			t.Errorf("MakeLongitude(%v) = %v, expected %v", l[0], lon, l[1])
		}
	}
	if _, err := MakeLongitude(gomath.Inf(1)); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("MakeLongitude(Inf) error = %v", err)
	}
}

func TestCallsign(t *testing.T) {
	if _, err := MakeCallsign("  "); !errors.Is(err, ErrInvalidCallsign) {
		t.Errorf("MakeCallsign of blank string error = %v", err)
	}
	cs, err := MakeCallsign(" jal123 ")
	if err != nil || cs != "jal123" {
		t.Errorf("MakeCallsign = %q, %v", cs, err)
	}
	if cs == "JAL123" {
		t.Errorf("callsigns should be case-sensitive")
	}
}

func TestMakePosition(t *testing.T) {
	p, err := MakePosition(35, 139, 35000)
	if err != nil {
		t.Fatal(err)
	}
	if pt := p.Point2LL(); pt != (math.Point2LL{139, 35}) {
		t.Errorf("Point2LL() = %v, expected (lon, lat)", pt)
	}
	if _, err := MakePosition(35, 139, -2000); !errors.Is(err, ErrAltitudeBelowFloor) {
		t.Errorf("MakePosition below floor error = %v", err)
	}
	if _, err := MakeVector(90, -10, 0); !errors.Is(err, ErrNegativeGroundSpeed) {
		t.Errorf("MakeVector negative speed error = %v", err)
	}
	if _, err := MakeInstructedVector(90, -5000, 250); !errors.Is(err, ErrAltitudeBelowFloor) {
		t.Errorf("MakeInstructedVector below floor error = %v", err)
	}
}

func TestPredictPosition(t *testing.T) {
	p, _ := MakePosition(35, 139, 10000)
	v, _ := MakeVector(0, 360, 1200)

	// 360 kts for 10 minutes is 60 nm; +1200 fpm for 10 minutes is +12000 ft.
	q, err := PredictPosition(p, v, 600)
	if err != nil {
		t.Fatal(err)
	}
	if d := math.NMDistance2LL(p.Point2LL(), q.Point2LL()); gomath.Abs(d-60) > 1e-6 {
		t.Errorf("predicted distance %f, expected 60", d)
	}
	if q.Altitude != 22000 {
		t.Errorf("predicted altitude %v, expected 22000", q.Altitude)
	}
	if gomath.Abs(q.Longitude.Degrees()-p.Longitude.Degrees()) > 1e-9 {
		t.Errorf("northbound track changed longitude: %v", q.Longitude)
	}

	v.VerticalSpeed = -3000
	if _, err := PredictPosition(p, v, 600); !errors.Is(err, ErrAltitudeBelowFloor) {
		t.Errorf("descending below the floor error = %v", err)
	}

	// Single-tick moves take the flat-earth path; it must agree with the
	// great circle.
	for hdg := 0.0; hdg < 360; hdg += 15 {
		v, _ := MakeVector(hdg, 480, 0)
		q, err := PredictPosition(p, v, 1)
		if err != nil {
			t.Fatal(err)
		}
		gc := math.Offset2LL(p.Point2LL(), hdg, 480.0/3600)
		if d := math.NMDistance2LL(q.Point2LL(), gc); d > 1e-6 {
			t.Errorf("hdg %v: one-second prediction is %g nm off the great circle", hdg, d)
		}
	}
}

func TestCharacteristics(t *testing.T) {
	for _, c := range []Category{CategoryCommercial, CategoryFighter, CategoryHelicopter} {
		ch := DefaultCharacteristics(c)
		if ch.Category != c {
			t.Errorf("DefaultCharacteristics(%s).Category = %s", c, ch.Category)
		}
		if err := ch.Validate(); err != nil {
			t.Errorf("DefaultCharacteristics(%s) invalid: %v", c, err)
		}
	}

	if ch := DefaultCharacteristics(CategoryHelicopter); ch.MinSpeed != 0 {
		t.Errorf("helicopters should be able to hover, min speed %v", ch.MinSpeed)
	}

	bad := DefaultCharacteristics(CategoryCommercial)
	bad.MaxTurnRate = 0
	bad.MaxSpeed = 100
	err := bad.Validate()
	if !errors.Is(err, ErrInvalidCharacteristics) {
		t.Errorf("Validate() = %v, expected ErrInvalidCharacteristics", err)
	}

	if gs := DefaultCharacteristics(CategoryCommercial).ClampSpeed(600); gs != 500 {
		t.Errorf("ClampSpeed(600) = %v, expected 500", gs)
	}
}

func TestCategoryText(t *testing.T) {
	for _, c := range []Category{CategoryCommercial, CategoryFighter, CategoryHelicopter} {
		b, err := c.MarshalText()
		if err != nil {
			t.Fatalf("%s: %v", c, err)
		}
		var d Category
		if err := d.UnmarshalText(b); err != nil || d != c {
			t.Errorf("UnmarshalText(%q) = %v, %v", b, d, err)
		}
	}
	if _, err := ParseCategory("blimp"); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("ParseCategory(blimp) error = %v", err)
	}
	if _, err := Category(12).MarshalText(); err == nil {
		t.Errorf("expected error marshaling invalid category")
	}
}
