// math/units.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

const (
	KMPerNM      = 1.852
	MetersPerFt  = 0.3048
	SecondsPerHr = 3600
)

func NMToKM(nm float64) float64 { return nm * KMPerNM }
func KMToNM(km float64) float64 { return km / KMPerNM }

func MetersToNM(m float64) float64 { return m / (KMPerNM * 1000) }

func FeetToMeters(ft float64) float64 { return ft * MetersPerFt }
func MetersToFeet(m float64) float64  { return m / MetersPerFt }

// KnotsToMetersPerSecond converts knots to m/s by way of km/h.
func KnotsToMetersPerSecond(kts float64) float64 {
	return kts * KMPerNM * 1000 / SecondsPerHr
}

// FPMToMetersPerSecond converts a vertical rate in feet/minute to m/s.
func FPMToMetersPerSecond(fpm float64) float64 {
	return fpm * MetersPerFt / 60
}
