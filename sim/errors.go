// sim/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrAltitudeAboveCeiling  = errors.New("Altitude is above the aircraft's ceiling")
	ErrDuplicateCallsign     = errors.New("Aircraft with that callsign already exists")
	ErrInvalidAircraft       = errors.New("Invalid aircraft")
	ErrInvalidRefreshRate    = errors.New("Refresh rate must be positive")
	ErrNilAircraft           = errors.New("Nil aircraft")
	ErrNoAircraftForCallsign = errors.New("No aircraft exists with that callsign")
	ErrSpeedOutsideEnvelope  = errors.New("Speed is outside the aircraft's envelope")
)
