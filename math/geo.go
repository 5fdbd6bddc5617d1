// math/geo.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

const (
	// EarthRadiusKM is the spherical-earth radius used for all distance
	// and position computations.
	EarthRadiusKM = 6378.1
	EarthRadiusM  = EarthRadiusKM * 1000

	// KMPerDegree is the length of one degree of arc along a great
	// circle.
	KMPerDegree = EarthRadiusKM * gomath.Pi / 180
)

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float64

func (p Point2LL) Longitude() float64 {
	return p[0]
}

func (p Point2LL) Latitude() float64 {
	return p[1]
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// NMDistance2LL returns the great-circle distance in nautical miles
// between two provided lat-long coordinates.
func NMDistance2LL(a Point2LL, b Point2LL) float64 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	lat1, lon1 := Radians(a[1]), Radians(a[0])
	lat2, lon2 := Radians(b[1]), Radians(b[0])
	dlat, dlon := lat2-lat1, lon2-lon1

	x := Sqr(Sin(dlat/2)) + Cos(lat1)*Cos(lat2)*Sqr(Sin(dlon/2))
	x = Clamp(x, 0, 1)
	c := 2 * Atan2(Sqrt(x), Sqrt(1-x))

	return KMToNM(EarthRadiusKM * c)
}

// NMDistance2LLFast returns an approximation of the distance in nautical
// miles between the two points, treating the earth as locally flat and
// scaling longitude by the cosine of the mean latitude. It agrees with
// NMDistance2LL to within a fraction of a percent at the ranges where
// separation matters but should not be used for long distances.
func NMDistance2LLFast(a Point2LL, b Point2LL) float64 {
	east, north := LocalOffsetMeters(a, b)
	return MetersToNM(Hypot(east, north))
}

// LocalOffsetMeters returns the east and north offsets in meters of b
// relative to a, using a flat-earth approximation around the mean
// latitude of the two points.
func LocalOffsetMeters(a, b Point2LL) (east, north float64) {
	dlat := b[1] - a[1]
	dlon := NormalizeTo180(b[0] - a[0])
	meanLat := Radians((a[1] + b[1]) / 2)

	north = dlat * KMPerDegree * 1000
	east = dlon * KMPerDegree * 1000 * Cos(meanLat)
	return
}

// Heading2LL returns the initial great-circle bearing from the point
// |from| to the point |to| in degrees, in [0,360).
func Heading2LL(from Point2LL, to Point2LL) float64 {
	lat1, lat2 := Radians(from[1]), Radians(to[1])
	dlon := Radians(NormalizeTo180(to[0] - from[0]))

	y := Sin(dlon) * Cos(lat2)
	x := Cos(lat1)*Sin(lat2) - Sin(lat1)*Cos(lat2)*Cos(dlon)
	if x == 0 && y == 0 {
		return 0
	}
	return NormalizeHeading(Degrees(Atan2(y, x)))
}

// Offset2LL returns the point at distance dist (in nautical miles) along
// the great circle leaving p with initial heading hdg.
func Offset2LL(p Point2LL, hdg float64, dist float64) Point2LL {
	if dist == 0 {
		return p
	}

	lat1, lon1 := Radians(p[1]), Radians(p[0])
	theta := Radians(hdg)
	delta := NMToKM(dist) / EarthRadiusKM

	sinLat2 := Sin(lat1)*Cos(delta) + Cos(lat1)*Sin(delta)*Cos(theta)
	lat2 := SafeASin(sinLat2)
	lon2 := lon1 + Atan2(Sin(theta)*Sin(delta)*Cos(lat1), Cos(delta)-Sin(lat1)*sinLat2)

	return Point2LL{NormalizeTo180(Degrees(lon2)), Clamp(Degrees(lat2), -90, 90)}
}

// OffsetPlanar2LL is the flat-earth counterpart of Offset2LL; it is only
// reasonable for short moves away from the poles.
func OffsetPlanar2LL(p Point2LL, hdg float64, dist float64) Point2LL {
	east, north := DecomposeVelocity(NMToKM(dist), hdg)
	lat := p[1] + north/KMPerDegree
	lon := p[0]
	if c := Cos(Radians((p[1] + lat) / 2)); c > 1e-12 {
		lon += east / (KMPerDegree * c)
	}
	return Point2LL{NormalizeTo180(lon), Clamp(lat, -90, 90)}
}
