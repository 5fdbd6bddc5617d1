// math/geo_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"math"
	"testing"
)

func TestNMDistance2LL(t *testing.T) {
	// One degree of latitude along a meridian.
	d := NMDistance2LL(Point2LL{0, 0}, Point2LL{0, 1})
	if expected := KMPerDegree / KMPerNM; math.Abs(d-expected) > 1e-9 {
		t.Errorf("NMDistance2LL 1 deg latitude = %f, expected %f", d, expected)
	}

	if d := NMDistance2LL(Point2LL{139, 35}, Point2LL{139, 35}); d != 0 {
		t.Errorf("NMDistance2LL of identical points = %f, expected 0", d)
	}

	// Antipodal points: half the circumference.
	d = NMDistance2LL(Point2LL{0, 0}, Point2LL{180, 0})
	if expected := KMToNM(math.Pi * EarthRadiusKM); math.Abs(d-expected) > 1e-6 {
		t.Errorf("NMDistance2LL antipodal = %f, expected %f", d, expected)
	}

	// Symmetric
	a, b := Point2LL{-73.78, 40.64}, Point2LL{-75.24, 39.87}
	if NMDistance2LL(a, b) != NMDistance2LL(b, a) {
		t.Errorf("NMDistance2LL not symmetric")
	}
}

func TestNMDistance2LLFastAgreement(t *testing.T) {
	center := Point2LL{139, 35}
	for _, hdg := range []float64{0, 37, 90, 145, 200, 271, 330} {
		for _, dist := range []float64{0.5, 3, 10, 25, 49} {
			p := Offset2LL(center, hdg, dist)
			exact := NMDistance2LL(center, p)
			fast := NMDistance2LLFast(center, p)
			if math.Abs(fast-exact)/exact > 0.01 {
				t.Errorf("hdg %v dist %v: fast %f exact %f differ by more than 1%%", hdg, dist, fast, exact)
			}
		}
	}
}

func TestLocalOffsetMetersAntimeridian(t *testing.T) {
	east, north := LocalOffsetMeters(Point2LL{179.9, 0}, Point2LL{-179.9, 0})
	if north != 0 {
		t.Errorf("north = %f, expected 0", north)
	}
	if expected := 0.2 * KMPerDegree * 1000; math.Abs(east-expected) > 1e-3 {
		t.Errorf("east = %f, expected %f", east, expected)
	}
}

func TestHeading2LL(t *testing.T) {
	tests := []struct {
		name     string
		from, to Point2LL
		expected float64
	}{
		{"north", Point2LL{0, 0}, Point2LL{0, 1}, 0},
		{"east", Point2LL{0, 0}, Point2LL{1, 0}, 90},
		{"south", Point2LL{0, 1}, Point2LL{0, 0}, 180},
		{"west", Point2LL{1, 0}, Point2LL{0, 0}, 270},
		{"across antimeridian", Point2LL{179.5, 0}, Point2LL{-179.5, 0}, 90},
		{"same point", Point2LL{10, 10}, Point2LL{10, 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h := Heading2LL(tt.from, tt.to); math.Abs(h-tt.expected) > 1e-9 {
				t.Errorf("Heading2LL(%v, %v) = %f, expected %f", tt.from, tt.to, h, tt.expected)
			}
		})
	}
}

func TestOffset2LL(t *testing.T) {
	p := Point2LL{139, 35}
	for _, hdg := range []float64{0, 45, 90, 180, 300} {
		q := Offset2LL(p, hdg, 10)
		if d := NMDistance2LL(p, q); math.Abs(d-10) > 1e-6 {
			t.Errorf("Offset2LL hdg %v: distance %f, expected 10", hdg, d)
		}
		if h := Heading2LL(p, q); HeadingDifference(h, hdg) > 1e-6 {
			t.Errorf("Offset2LL hdg %v: bearing back %f", hdg, h)
		}
		// The planar version should be close for short moves.
		if d := NMDistance2LL(q, OffsetPlanar2LL(p, hdg, 10)); d > 0.05 {
			t.Errorf("OffsetPlanar2LL hdg %v differs by %f nm", hdg, d)
		}
	}

	if q := Offset2LL(p, 123, 0); q != p {
		t.Errorf("zero-distance offset moved the point: %v", q)
	}

	// Crossing the antimeridian wraps longitude.
	q := Offset2LL(Point2LL{179.99, 0}, 90, 5)
	if q[0] > 0 || q[0] <= -180 {
		t.Errorf("antimeridian crossing gave longitude %f", q[0])
	}
}

func TestUnits(t *testing.T) {
	if v := KnotsToMetersPerSecond(1); math.Abs(v-0.514444) > 1e-6 {
		t.Errorf("KnotsToMetersPerSecond(1) = %f", v)
	}
	if v := KnotsToMetersPerSecond(420); math.Abs(v-216.0667) > 1e-4 {
		t.Errorf("KnotsToMetersPerSecond(420) = %f", v)
	}
	if v := FeetToMeters(1000); math.Abs(v-304.8) > 1e-9 {
		t.Errorf("FeetToMeters(1000) = %f", v)
	}
	if v := MetersToNM(1852); math.Abs(v-1) > 1e-12 {
		t.Errorf("MetersToNM(1852) = %f", v)
	}
	if v := FPMToMetersPerSecond(6000); math.Abs(v-30.48) > 1e-9 {
		t.Errorf("FPMToMetersPerSecond(6000) = %f", v)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Errorf("Clamp misbehaves")
	}
	if Clamp(1.5, 0.0, 1.0) != 1.0 {
		t.Errorf("float Clamp misbehaves")
	}
}
