// Package model defines the cycle configuration and day memory types.
package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrConfigInvalid is returned when a cycle configuration cannot be used.
var ErrConfigInvalid = errors.New("invalid cycle config")

const (
	DefaultCycleLength    = 28
	DefaultPeriodDuration = 5
)

// CycleConfig holds the three numbers that drive the cycle model.
type CycleConfig struct {
	Name               string `json:"name" yaml:"name"`
	CycleStart         string `json:"cycle_start" yaml:"cycle_start"`
	CycleLengthDays    int    `json:"cycle_length_days" yaml:"cycle_length_days"`
	PeriodDurationDays int    `json:"period_duration_days" yaml:"period_duration_days"`
}

// DefaultCycleConfig is used until the user saves a configuration.
func DefaultCycleConfig(today time.Time) CycleConfig {
	return CycleConfig{
		CycleStart:         DayOf(today),
		CycleLengthDays:    DefaultCycleLength,
		PeriodDurationDays: DefaultPeriodDuration,
	}
}

// Normalize returns a usable copy of c. A period longer than the cycle is
// clamped to the cycle length; non-positive numbers and bad dates are errors.
func (c CycleConfig) Normalize() (CycleConfig, error) {
	if c.CycleLengthDays <= 0 {
		return c, fmt.Errorf("%w: cycle length must be positive, got %d", ErrConfigInvalid, c.CycleLengthDays)
	}
	if c.PeriodDurationDays <= 0 {
		return c, fmt.Errorf("%w: period duration must be positive, got %d", ErrConfigInvalid, c.PeriodDurationDays)
	}
	if c.PeriodDurationDays > c.CycleLengthDays {
		c.PeriodDurationDays = c.CycleLengthDays
	}
	if _, err := ParseDay(c.CycleStart); err != nil {
		return c, fmt.Errorf("%w: cycle start: %v", ErrConfigInvalid, err)
	}
	return c, nil
}

// StartDate returns CycleStart as a midnight UTC date.
func (c CycleConfig) StartDate() (time.Time, error) {
	return ParseDay(c.CycleStart)
}

// Phase is a coarse classification of a cycle day.
type Phase string

const (
	PhasePeriod     Phase = "Period"
	PhaseFollicular Phase = "Follicular"
	PhaseOvulation  Phase = "Ovulation"
	PhaseLuteal     Phase = "Luteal"
)
