package match

import (
	"errors"
	"strings"
)

// Rule identifies a validation rule. Lower values win when several fail.
type Rule int

// Validation rules in priority order.
const (
	RuleNone Rule = iota
	RuleWicketsRange
	RuleBallNotation
	RuleOversExceeded
	RuleOversRange
)

// User-facing messages.
const (
	MsgWicketsRange  = "Wickets fallen must be between 0 and 10."
	MsgBallNotation  = "Invalid over format. Balls can only be from 0 to 5."
	MsgOversExceeded = "Overs cannot exceed 20."
	MsgOversRange    = "Overs must be between 0 and 20."
	MsgRequired      = "All fields are required."

	msgInvalidPrefix = "Enter a valid number for: "
)

func (r Rule) String() string {
	switch r {
	case RuleNone:
		return "none"
	case RuleWicketsRange:
		return "wickets_range"
	case RuleBallNotation:
		return "ball_notation"
	case RuleOversExceeded:
		return "overs_exceeded"
	case RuleOversRange:
		return "overs_range"
	}
	return "unknown"
}

// MarshalText encodes the rule by name.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ValidationResult carries at most one error message and whether the form
// may be submitted.
type ValidationResult struct {
	FieldErrors map[Field]string `json:"fieldErrors"`
	Message     string           `json:"message,omitempty"`
	Rule        Rule             `json:"rule"`
	Missing     []Field          `json:"missing,omitempty"`
	Invalid     []Field          `json:"invalid,omitempty"`
	Submittable bool             `json:"submittable"`
}

type check struct {
	rule    Rule
	field   Field
	message string
	fails   func(RawInput, DerivedState) bool
}

// policy is evaluated top to bottom; the first failing check wins.
var policy = []check{
	{RuleWicketsRange, FieldWicketsFallen, MsgWicketsRange, func(r RawInput, d DerivedState) bool {
		return !isEmpty(r.WicketsFallen) && !d.WicketsRemaining.Defined()
	}},
	{RuleBallNotation, FieldOver, MsgBallNotation, func(r RawInput, d DerivedState) bool {
		return !isEmpty(r.Over) && errors.Is(d.OverErr, ErrInvalidBallNotation)
	}},
	{RuleOversExceeded, FieldOver, MsgOversExceeded, func(_ RawInput, d DerivedState) bool {
		return errors.Is(d.OverErr, ErrOversExceeded)
	}},
	{RuleOversRange, FieldOver, MsgOversRange, func(r RawInput, d DerivedState) bool {
		return !isEmpty(r.Over) && errors.Is(d.OverErr, ErrOutOfRange)
	}},
}

// Validate applies the legality rules to raw input and its derived state.
func Validate(raw RawInput, d DerivedState) ValidationResult {
	res := ValidationResult{
		FieldErrors: make(map[Field]string, 1),
		Missing:     raw.Missing(),
		Invalid:     raw.Invalid(),
	}
	for _, c := range policy {
		if c.fails(raw, d) {
			res.Rule = c.rule
			res.Message = c.message
			res.FieldErrors[c.field] = c.message
			break
		}
	}
	res.Submittable = res.Rule == RuleNone && len(res.Missing) == 0 && len(res.Invalid) == 0
	return res
}

// Reason explains why the form cannot be submitted: the rule message,
// then unusable numbers, then missing fields. It is empty when the form is
// submittable.
func (v ValidationResult) Reason() string {
	switch {
	case v.Message != "":
		return v.Message
	case len(v.Invalid) > 0:
		names := make([]string, 0, len(v.Invalid))
		for _, f := range v.Invalid {
			names = append(names, string(f))
		}
		return msgInvalidPrefix + strings.Join(names, ", ") + "."
	case len(v.Missing) > 0:
		return MsgRequired
	}
	return ""
}

// Recompute derives and validates raw in one step.
func Recompute(raw RawInput) (DerivedState, ValidationResult) {
	d := DeriveMetrics(raw)
	return d, Validate(raw, d)
}
