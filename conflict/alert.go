// conflict/alert.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	"fmt"
	"strings"

	"github.com/mmp/airsep/math"
)

// RiskLevel is a conflict risk score in [0,100].
type RiskLevel float64

func MakeRiskLevel(v float64) (RiskLevel, error) {
	if !math.IsFinite(v) || v < 0 || v > 100 {
		return 0, fmt.Errorf("%v: %w", v, ErrRiskLevelOutOfRange)
	}
	return RiskLevel(v), nil
}

// AlertLevel is a discrete danger classification; larger values are more
// dangerous so that levels can be compared directly.
type AlertLevel int

const (
	Safe AlertLevel = iota
	WhiteConflict
	RedConflict
)

const (
	WhiteConflictThreshold = 30
	RedConflictThreshold   = 70
)

// Classify maps a risk level to its alert level.
func Classify(r RiskLevel) AlertLevel {
	switch {
	case r >= RedConflictThreshold:
		return RedConflict
	case r >= WhiteConflictThreshold:
		return WhiteConflict
	default:
		return Safe
	}
}

func (a AlertLevel) String() string {
	switch a {
	case Safe:
		return "SAFE"
	case WhiteConflict:
		return "WHITE_CONFLICT"
	case RedConflict:
		return "RED_CONFLICT"
	default:
		return fmt.Sprintf("AlertLevel(%d)", int(a))
	}
}

func ParseAlertLevel(s string) (AlertLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SAFE":
		return Safe, nil
	case "WHITE_CONFLICT", "WHITE":
		return WhiteConflict, nil
	case "RED_CONFLICT", "RED":
		return RedConflict, nil
	default:
		return Safe, fmt.Errorf("%q: invalid alert level", s)
	}
}

func (a AlertLevel) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AlertLevel) UnmarshalText(b []byte) error {
	var err error
	*a, err = ParseAlertLevel(string(b))
	return err
}
