// server/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"errors"
	"fmt"
	"strings"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/sim"
	"github.com/mmp/airsep/util"
)

var (
	ErrInvalidAircraftInfo = errors.New("Aircraft information doesn't match its category")
	ErrInvalidStepCount    = errors.New("Step count must be between 1 and 3600")
	ErrRPCVersionMismatch  = errors.New("Client and server RPC versions don't match")
	ErrServerDisconnected  = errors.New("Server disconnected")
)

// net/rpc only carries the error string; these are the errors that we
// can recover on the client side so that errors.Is works across the
// connection.
var errorStringToError = map[string]error{
	av.ErrAltitudeBelowFloor.Error():     av.ErrAltitudeBelowFloor,
	av.ErrInvalidAltitude.Error():        av.ErrInvalidAltitude,
	av.ErrInvalidCallsign.Error():        av.ErrInvalidCallsign,
	av.ErrInvalidCategory.Error():        av.ErrInvalidCategory,
	av.ErrInvalidCharacteristics.Error(): av.ErrInvalidCharacteristics,
	av.ErrInvalidCoordinate.Error():      av.ErrInvalidCoordinate,
	av.ErrInvalidHeading.Error():         av.ErrInvalidHeading,
	av.ErrNegativeGroundSpeed.Error():    av.ErrNegativeGroundSpeed,
	av.ErrNonFiniteVerticalSpeed.Error(): av.ErrNonFiniteVerticalSpeed,

	conflict.ErrInvalidConfig.Error():       conflict.ErrInvalidConfig,
	conflict.ErrNilAircraft.Error():         conflict.ErrNilAircraft,
	conflict.ErrPairEvaluation.Error():      conflict.ErrPairEvaluation,
	conflict.ErrRiskLevelOutOfRange.Error(): conflict.ErrRiskLevelOutOfRange,

	sim.ErrAltitudeAboveCeiling.Error():  sim.ErrAltitudeAboveCeiling,
	sim.ErrDuplicateCallsign.Error():     sim.ErrDuplicateCallsign,
	sim.ErrInvalidAircraft.Error():       sim.ErrInvalidAircraft,
	sim.ErrInvalidRefreshRate.Error():    sim.ErrInvalidRefreshRate,
	sim.ErrNilAircraft.Error():           sim.ErrNilAircraft,
	sim.ErrNoAircraftForCallsign.Error(): sim.ErrNoAircraftForCallsign,
	sim.ErrSpeedOutsideEnvelope.Error():  sim.ErrSpeedOutsideEnvelope,

	util.ErrRPCTimeout.Error(): util.ErrRPCTimeout,

	ErrInvalidAircraftInfo.Error(): ErrInvalidAircraftInfo,
	ErrInvalidStepCount.Error():    ErrInvalidStepCount,
	ErrRPCVersionMismatch.Error():  ErrRPCVersionMismatch,
	ErrServerDisconnected.Error():  ErrServerDisconnected,
}

// TryDecodeError maps an error that came back over RPC to the
// corresponding sentinel error. Most errors are wrapped with context
// ("UAL1: no aircraft..."), so if there's no exact match the longest
// known suffix wins and the context is kept.
func TryDecodeError(e error) error {
	if e == nil {
		return e
	}
	msg := e.Error()
	if err, ok := errorStringToError[msg]; ok {
		return err
	}

	var best error
	var bestLen int
	for s, err := range errorStringToError {
		if len(s) > bestLen && strings.HasSuffix(msg, ": "+s) {
			best, bestLen = err, len(s)
		}
	}
	if best == nil {
		return e
	}
	return fmt.Errorf("%s: %w", strings.TrimSuffix(msg, ": "+best.Error()), best)
}

func TryDecodeErrorString(s string) error {
	if s == "" {
		return nil
	}
	return TryDecodeError(errors.New(s))
}
