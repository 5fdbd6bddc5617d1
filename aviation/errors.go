// aviation/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

var (
	ErrAltitudeBelowFloor     = errors.New("Altitude below lowest known airport elevation")
	ErrInvalidAltitude        = errors.New("Invalid altitude")
	ErrInvalidCallsign        = errors.New("Invalid callsign")
	ErrInvalidCategory        = errors.New("Invalid aircraft category")
	ErrInvalidCharacteristics = errors.New("Invalid aircraft characteristics")
	ErrInvalidCoordinate      = errors.New("Invalid latitude/longitude")
	ErrInvalidHeading         = errors.New("Invalid heading")
	ErrNegativeGroundSpeed    = errors.New("Negative ground speed")
	ErrNonFiniteVerticalSpeed = errors.New("Vertical speed must be finite")
)
