// Package prediction defines the payload exchanged with the prediction service.
package prediction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/cricscore/internal/domain/match"
)

// ErrInvalidPayload is returned when a request cannot be built from the form.
var ErrInvalidPayload = errors.New("invalid prediction payload")

// Request is the JSON body of POST /predict_score.
type Request struct {
	Country        string  `json:"country"`
	Venue          string  `json:"venue"`
	Score          float64 `json:"score"`
	RunInLast5     float64 `json:"run_in_last5"`
	WicketsInLast5 float64 `json:"wickets_in_last5"`
	DeliveryLeft   int     `json:"delivery_left"`
	WicketsLeft    int     `json:"wickets_left"`
	CurrentRunRate float64 `json:"current_run_rate"`
}

// InputEcho is the request summary the service sends back.
type InputEcho struct {
	Country             string  `json:"country"`
	Venue               string  `json:"venue"`
	CurrentScore        float64 `json:"current_score"`
	DeliveriesLeft      int     `json:"deliveries_left"`
	WicketsLeft         int     `json:"wickets_left"`
	CurrentRunRate      float64 `json:"current_run_rate"`
	RunsInLast5Overs    float64 `json:"runs_in_last_5_overs"`
	WicketsInLast5Overs float64 `json:"wickets_in_last_5_overs"`
}

// Result is the forecast returned by the service.
type Result struct {
	PredictedFinalScore float64    `json:"predicted_final_score"`
	VenueAverageScore   float64    `json:"venue_average_score"`
	Input               *InputEcho `json:"input_data,omitempty"`
}

// NewRequest assembles the payload from a validated form. When roundRunRate
// is set the run rate is sent with two decimals, as displayed.
func NewRequest(raw match.RawInput, d match.DerivedState, roundRunRate bool) (Request, error) {
	req := Request{
		Country: strings.TrimSpace(raw.Country),
		Venue:   strings.TrimSpace(raw.Venue),
	}
	if req.Country == "" || req.Venue == "" {
		return Request{}, fmt.Errorf("%w: country and venue are required", ErrInvalidPayload)
	}

	var ok bool
	if req.Score, ok = match.ParseRuns(raw.Score); !ok {
		return Request{}, fmt.Errorf("%w: score %q", ErrInvalidPayload, raw.Score)
	}
	if req.RunInLast5, ok = match.ParseRuns(raw.RunsLast5); !ok {
		return Request{}, fmt.Errorf("%w: runs in last 5 %q", ErrInvalidPayload, raw.RunsLast5)
	}
	wickets, ok := match.ParseWickets(raw.WicketsLast5)
	if !ok {
		return Request{}, fmt.Errorf("%w: wickets in last 5 %q", ErrInvalidPayload, raw.WicketsLast5)
	}
	req.WicketsInLast5 = float64(wickets)
	if req.DeliveryLeft, ok = d.DeliveriesRemaining.Get(); !ok {
		return Request{}, fmt.Errorf("%w: deliveries left undefined", ErrInvalidPayload)
	}
	if req.WicketsLeft, ok = d.WicketsRemaining.Get(); !ok {
		return Request{}, fmt.Errorf("%w: wickets left undefined", ErrInvalidPayload)
	}

	rate := d.CurrentRunRate
	if roundRunRate {
		rate = d.RoundedRunRate()
	}
	// Zero balls bowled leaves the rate undefined; the service expects a number.
	req.CurrentRunRate = rate.Value()
	return req, nil
}
