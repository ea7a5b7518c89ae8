// Package match derives and validates live T20 match state.
//
// Every function in this package is pure: RawInput goes in, DerivedState and
// ValidationResult come out, and nothing is retained between calls.
package match

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field names a user-editable input.
type Field string

// Editable fields.
const (
	FieldScore         Field = "score"
	FieldOver          Field = "over"
	FieldWicketsFallen Field = "wicketsFallen"
	FieldRunsLast5     Field = "runsLast5"
	FieldWicketsLast5  Field = "wicketsLast5"
	FieldCountry       Field = "country"
	FieldVenue         Field = "venue"
)

// RequiredFields lists every field that must be filled before submission,
// in display order.
var RequiredFields = []Field{
	FieldScore,
	FieldOver,
	FieldWicketsFallen,
	FieldRunsLast5,
	FieldWicketsLast5,
	FieldCountry,
	FieldVenue,
}

// ParseField maps a field name to a Field.
func ParseField(name string) (Field, error) {
	f := Field(name)
	for _, known := range RequiredFields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// RawInput is the form as the user typed it. An empty string means the
// field has not been filled in.
type RawInput struct {
	Score         string `json:"score"`
	Over          string `json:"over"`
	WicketsFallen string `json:"wicketsFallen"`
	RunsLast5     string `json:"runsLast5"`
	WicketsLast5  string `json:"wicketsLast5"`
	Country       string `json:"country"`
	Venue         string `json:"venue"`
}

// Get returns the raw value of f.
func (r RawInput) Get(f Field) (string, error) {
	switch f {
	case FieldScore:
		return r.Score, nil
	case FieldOver:
		return r.Over, nil
	case FieldWicketsFallen:
		return r.WicketsFallen, nil
	case FieldRunsLast5:
		return r.RunsLast5, nil
	case FieldWicketsLast5:
		return r.WicketsLast5, nil
	case FieldCountry:
		return r.Country, nil
	case FieldVenue:
		return r.Venue, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, f)
}

// With returns a copy of r with f set to value.
func (r RawInput) With(f Field, value string) (RawInput, error) {
	switch f {
	case FieldScore:
		r.Score = value
	case FieldOver:
		r.Over = value
	case FieldWicketsFallen:
		r.WicketsFallen = value
	case FieldRunsLast5:
		r.RunsLast5 = value
	case FieldWicketsLast5:
		r.WicketsLast5 = value
	case FieldCountry:
		r.Country = value
	case FieldVenue:
		r.Venue = value
	default:
		return r, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return r, nil
}

// Missing returns the required fields that are still empty.
func (r RawInput) Missing() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if v, _ := r.Get(f); isEmpty(v) {
			missing = append(missing, f)
		}
	}
	return missing
}

func isEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ParseNumber reads a raw numeric field. ok is false for empty, malformed or
// non-finite input.
func ParseNumber(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseWickets reads a wicket count that must be a whole number in [0,10].
func ParseWickets(s string) (int, bool) {
	v, ok := ParseNumber(s)
	if !ok || v != math.Trunc(v) || v < 0 || v > MaxWickets {
		return 0, false
	}
	return int(v), true
}

// ParseRuns reads a run count: any finite number that is not negative.
func ParseRuns(s string) (float64, bool) {
	v, ok := ParseNumber(s)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

// Invalid returns the filled-in payload fields whose value cannot be sent:
// score and runs must be non-negative numbers, wickets in the last five
// overs a whole number in [0,10]. Over and wickets fallen are judged by
// the rule policy instead.
func (r RawInput) Invalid() []Field {
	var invalid []Field
	if !isEmpty(r.Score) {
		if _, ok := ParseRuns(r.Score); !ok {
			invalid = append(invalid, FieldScore)
		}
	}
	if !isEmpty(r.RunsLast5) {
		if _, ok := ParseRuns(r.RunsLast5); !ok {
			invalid = append(invalid, FieldRunsLast5)
		}
	}
	if !isEmpty(r.WicketsLast5) {
		if _, ok := ParseWickets(r.WicketsLast5); !ok {
			invalid = append(invalid, FieldWicketsLast5)
		}
	}
	return invalid
}
