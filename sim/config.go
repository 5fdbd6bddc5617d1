// sim/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"time"

	"github.com/mmp/airsep/math"
	"github.com/mmp/airsep/util"
)

type Config struct {
	// RefreshRateHz is the number of simulation ticks per second; each
	// tick advances the aircraft by 1/RefreshRateHz seconds.
	RefreshRateHz float64 `json:"refresh_rate_hz"`

	// StartPaused leaves the scheduler paused until it is started.
	StartPaused bool `json:"start_paused"`
}

func DefaultConfig() Config {
	return Config{RefreshRateHz: 1}
}

func (c Config) Check(e *util.ErrorLogger) {
	e.Push("sim")
	defer e.Pop()

	if !(c.RefreshRateHz > 0) || !math.IsFinite(c.RefreshRateHz) {
		e.ErrorString("refresh_rate_hz %v: %v", c.RefreshRateHz, ErrInvalidRefreshRate)
	} else if c.RefreshRateHz > 100 {
		e.ErrorString("refresh_rate_hz %v is unreasonably high", c.RefreshRateHz)
	}
}

func (c Config) Validate() error {
	var e util.ErrorLogger
	c.Check(&e)
	if e.HaveErrors() {
		return fmt.Errorf("%s: %w", e.String(), ErrInvalidRefreshRate)
	}
	return nil
}

// TickInterval returns the wall-clock time between ticks.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.RefreshRateHz)
}
