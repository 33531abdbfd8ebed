// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package duration

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDuration is returned by UnmarshalText when the text has no
// recognizable "<digits> <unit>" form.
var ErrInvalidDuration = errors.New("duration: invalid duration")

// pattern is intentionally unanchored: the first occurrence wins and
// anything after it is ignored.
var pattern = regexp.MustCompile(`(\d+) (ms|milliseconds|s|seconds|m|minutes|h|hours|d|days)`)

// Unit is a time unit understood by Parse.
type Unit int

const (
	// Millisecond is 1/1000 of a second.
	Millisecond Unit = iota
	// Second is the base unit.
	Second
	// Minute is 60 seconds.
	Minute
	// Hour is 3600 seconds.
	Hour
	// Day is 86400 seconds.
	Day
)

// factor returns the number of seconds in one unit.
func (u Unit) factor() float64 {
	switch u {
	case Millisecond:
		return 0.001
	case Minute:
		return 60
	case Hour:
		return 3600
	case Day:
		return 86400
	default:
		return 1
	}
}

// String returns the long unit word.
func (u Unit) String() string {
	switch u {
	case Millisecond:
		return "milliseconds"
	case Minute:
		return "minutes"
	case Hour:
		return "hours"
	case Day:
		return "days"
	default:
		return "seconds"
	}
}

func unitFromWord(w string) Unit {
	switch w {
	case "ms", "milliseconds":
		return Millisecond
	case "m", "minutes":
		return Minute
	case "h", "hours":
		return Hour
	case "d", "days":
		return Day
	default:
		return Second
	}
}

// Duration is a time interval expressed as a magnitude and a unit.
// The zero value is "0 seconds".
type Duration struct {
	magnitude uint64
	unit      Unit
}

// New returns a Duration of n units.
func New(n uint64, u Unit) Duration { return Duration{magnitude: n, unit: u} }

// Parse reads a duration such as "10 minutes" or "50 ms".
//
// The boolean is false when text holds no match; callers must treat that as
// absence rather than as a zero duration.
func Parse(text string) (Duration, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Duration{}, false
	}

	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		// digits overflowing uint64
		return Duration{}, false
	}

	return Duration{magnitude: n, unit: unitFromWord(m[2])}, true
}

// MustParse is like Parse but panics on absence. It is meant for constants.
func MustParse(text string) Duration {
	d, ok := Parse(text)
	if !ok {
		panic(fmt.Sprintf("duration: cannot parse %q", text))
	}
	return d
}

// Magnitude returns the numeric part.
func (d Duration) Magnitude() uint64 { return d.magnitude }

// Unit returns the unit part.
func (d Duration) Unit() Unit { return d.unit }

// Seconds returns the duration in fractional seconds.
func (d Duration) Seconds() float64 { return float64(d.magnitude) * d.unit.factor() }

// Std converts the duration to a [time.Duration], saturating at the
// largest representable value.
func (d Duration) Std() time.Duration {
	ns := d.Seconds() * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// IsZero reports whether the duration has zero magnitude.
func (d Duration) IsZero() bool { return d.magnitude == 0 }

// String renders the duration back into its parseable form.
func (d Duration) String() string { return fmt.Sprintf("%d %s", d.magnitude, d.unit) }

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDuration, text)
	}
	*d = parsed
	return nil
}
