package match

import (
	"math"
	"strconv"
)

// DerivedState is computed from RawInput and never edited directly.
type DerivedState struct {
	WicketsRemaining    Int   `json:"wicketsRemaining"`
	BallsBowled         Int   `json:"ballsBowled"`
	DeliveriesRemaining Int   `json:"deliveriesRemaining"`
	CurrentRunRate      Float `json:"currentRunRate"`

	// OverErr is the ParseOver failure for a filled-in over field.
	OverErr error `json:"-"`
}

// DependsOn reports whether editing f can change the derived state.
func DependsOn(f Field) bool {
	return f == FieldScore || f == FieldOver || f == FieldWicketsFallen
}

// DeriveMetrics computes wickets remaining, deliveries remaining and the
// current run rate. Values that cannot be computed stay undefined.
func DeriveMetrics(raw RawInput) DerivedState {
	var d DerivedState

	if w, ok := ParseWickets(raw.WicketsFallen); ok {
		d.WicketsRemaining = Some(MaxWickets - w)
	}

	if isEmpty(raw.Over) {
		return d
	}
	over, ok := ParseNumber(raw.Over)
	if !ok {
		over = math.NaN()
	}
	balls, err := ParseOver(over)
	if err != nil {
		d.OverErr = err
		return d
	}
	d.BallsBowled = Some(balls)
	d.DeliveriesRemaining = Some(MaxBalls - balls)

	if score, ok := ParseNumber(raw.Score); ok && score >= 0 && balls > 0 {
		d.CurrentRunRate = Some(score / float64(balls) * BallsPerOver)
	}
	return d
}

// RoundedRunRate returns the run rate rounded to two decimal places.
func (d DerivedState) RoundedRunRate() Float {
	v, ok := d.CurrentRunRate.Get()
	if !ok {
		return Float{}
	}
	return Some(math.Round(v*100) / 100)
}

// DisplayRunRate formats the run rate with two decimals, or "" when undefined.
func (d DerivedState) DisplayRunRate() string {
	v, ok := d.CurrentRunRate.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
