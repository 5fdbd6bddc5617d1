// conflict/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	"fmt"
	"runtime"
	"time"

	"github.com/mmp/airsep/util"
)

// Config holds the separation standards and tuning parameters used by
// the Detector.
type Config struct {
	MinHorizontalSeparationNM float64 `json:"min_horizontal_separation_nm"`
	MinVerticalSeparationFt   float64 `json:"min_vertical_separation_ft"`

	// MaxPredictionTime bounds how far ahead (in seconds) closest
	// approach is considered.
	MaxPredictionTime float64 `json:"max_prediction_time_sec"`

	// Pairs farther apart than this are not evaluated.
	PreFilterDistanceNM float64 `json:"pre_filter_distance_nm"`

	// Workers is the maximum number of goroutines used to evaluate
	// pairs; zero means runtime.NumCPU().
	Workers int `json:"workers"`

	// CacheSize entries of pair results are kept for CacheTTL seconds;
	// a CacheSize of zero disables caching.
	CacheSize int     `json:"cache_size"`
	CacheTTL  float64 `json:"cache_ttl_sec"`
}

func DefaultConfig() Config {
	return Config{
		MinHorizontalSeparationNM: 5,
		MinVerticalSeparationFt:   1000,
		MaxPredictionTime:         300,
		PreFilterDistanceNM:       50,
		Workers:                   runtime.NumCPU(),
		CacheSize:                 32768,
		CacheTTL:                  5,
	}
}

func (c Config) Check(e *util.ErrorLogger) {
	e.Push("conflict")
	defer e.Pop()

	if !(c.MinHorizontalSeparationNM > 0) {
		e.ErrorString("min_horizontal_separation_nm %v must be positive", c.MinHorizontalSeparationNM)
	}
	if !(c.MinVerticalSeparationFt > 0) {
		e.ErrorString("min_vertical_separation_ft %v must be positive", c.MinVerticalSeparationFt)
	}
	if !(c.MaxPredictionTime > 0) {
		e.ErrorString("max_prediction_time_sec %v must be positive", c.MaxPredictionTime)
	}
	if c.PreFilterDistanceNM < c.MinHorizontalSeparationNM {
		e.ErrorString("pre_filter_distance_nm %v must be at least the minimum horizontal separation",
			c.PreFilterDistanceNM)
	}
	if c.Workers < 0 {
		e.ErrorString("workers %d must not be negative", c.Workers)
	}
	if c.CacheSize < 0 {
		e.ErrorString("cache_size %d must not be negative", c.CacheSize)
	}
	if c.CacheSize > 0 && !(c.CacheTTL > 0) {
		e.ErrorString("cache_ttl_sec %v must be positive when caching is enabled", c.CacheTTL)
	}
}

func (c Config) Validate() error {
	var e util.ErrorLogger
	c.Check(&e)
	if e.HaveErrors() {
		return fmt.Errorf("%s: %w", e.String(), ErrInvalidConfig)
	}
	return nil
}

func (c Config) cacheTTL() time.Duration {
	return time.Duration(c.CacheTTL * float64(time.Second))
}

func (c Config) workers() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
