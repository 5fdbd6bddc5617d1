// aviation/characteristics.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"

	"github.com/mmp/airsep/math"
	"github.com/mmp/airsep/util"
)

type Category int

const (
	CategoryCommercial Category = iota
	CategoryFighter
	CategoryHelicopter
)

func (c Category) String() string {
	switch c {
	case CategoryCommercial:
		return "commercial"
	case CategoryFighter:
		return "fighter"
	case CategoryHelicopter:
		return "helicopter"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "commercial", "airliner":
		return CategoryCommercial, nil
	case "fighter", "military":
		return CategoryFighter, nil
	case "helicopter", "heli":
		return CategoryHelicopter, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidCategory)
	}
}

func (c Category) MarshalText() ([]byte, error) {
	if c < CategoryCommercial || c > CategoryHelicopter {
		return nil, ErrInvalidCategory
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	var err error
	*c, err = ParseCategory(string(b))
	return err
}

// Characteristics is an aircraft's performance envelope. Rates are per
// second so that they can be scaled by the simulation refresh rate.
type Characteristics struct {
	Category Category

	MaxAcceleration float64 // knots per second
	MaxTurnRate     float64 // degrees per second
	MaxClimbRate    float64 // feet per minute

	MinSpeed    GroundSpeed
	MaxSpeed    GroundSpeed
	MaxAltitude Altitude
}

// DefaultCharacteristics returns the envelope used for a category when the
// aircraft doesn't provide its own.
func DefaultCharacteristics(c Category) Characteristics {
	switch c {
	case CategoryFighter:
		return Characteristics{
			Category:        CategoryFighter,
			MaxAcceleration: 8,
			MaxTurnRate:     10,
			MaxClimbRate:    30000,
			MinSpeed:        150,
			MaxSpeed:        1200,
			MaxAltitude:     50000,
		}
	case CategoryHelicopter:
		return Characteristics{
			Category:        CategoryHelicopter,
			MaxAcceleration: 3,
			MaxTurnRate:     6,
			MaxClimbRate:    1500,
			MinSpeed:        0,
			MaxSpeed:        160,
			MaxAltitude:     15000,
		}
	default:
		return Characteristics{
			Category:        CategoryCommercial,
			MaxAcceleration: 2,
			MaxTurnRate:     3,
			MaxClimbRate:    3000,
			MinSpeed:        140,
			MaxSpeed:        500,
			MaxAltitude:     41000,
		}
	}
}

// Check reports every problem with the envelope to e.
func (c Characteristics) Check(e *util.ErrorLogger) {
	e.Push("characteristics " + c.Category.String())
	defer e.Pop()

	if _, err := c.Category.MarshalText(); err != nil {
		e.Error(err)
	}
	if !(c.MaxAcceleration > 0) || !math.IsFinite(c.MaxAcceleration) {
		e.ErrorString("max acceleration %v must be positive", c.MaxAcceleration)
	}
	if !(c.MaxTurnRate > 0) || !math.IsFinite(c.MaxTurnRate) {
		e.ErrorString("max turn rate %v must be positive", c.MaxTurnRate)
	}
	if !(c.MaxClimbRate > 0) || !math.IsFinite(c.MaxClimbRate) {
		e.ErrorString("max climb rate %v must be positive", c.MaxClimbRate)
	}
	if c.MinSpeed < 0 {
		e.Error(ErrNegativeGroundSpeed)
	}
	if c.MaxSpeed <= c.MinSpeed {
		e.ErrorString("max speed %.0f must be greater than min speed %.0f", c.MaxSpeed, c.MinSpeed)
	}
	if c.MaxAltitude <= 0 {
		e.ErrorString("max altitude %.0f must be positive", c.MaxAltitude)
	}
}

// Validate returns an error wrapping ErrInvalidCharacteristics if the
// envelope can't be flown.
func (c Characteristics) Validate() error {
	var e util.ErrorLogger
	c.Check(&e)
	if e.HaveErrors() {
		return fmt.Errorf("%s: %w", e.String(), ErrInvalidCharacteristics)
	}
	return nil
}

// ClampSpeed limits gs to the envelope's speed range.
func (c Characteristics) ClampSpeed(gs GroundSpeed) GroundSpeed {
	return math.Clamp(gs, c.MinSpeed, c.MaxSpeed)
}
