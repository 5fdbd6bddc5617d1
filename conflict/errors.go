// conflict/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import "errors"

var (
	ErrInvalidConfig       = errors.New("Invalid conflict detection configuration")
	ErrNilAircraft         = errors.New("Nil aircraft passed to conflict detection")
	ErrPairEvaluation      = errors.New("Unable to evaluate aircraft pair")
	ErrRiskLevelOutOfRange = errors.New("Risk level must be between 0 and 100")
)
