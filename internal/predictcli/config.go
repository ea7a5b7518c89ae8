// Package predictcli runs a single prediction from the command line.
package predictcli

import (
	"errors"
	"time"
)

// Config holds the inputs of one CLI run. Match fields are raw strings;
// empty means not given.
type Config struct {
	BaseURL      string        // Base URL of the prediction service
	CatalogPath  string        // Local venue catalog used instead of GET /venues
	Timeout      time.Duration // Per-request timeout
	DryRun       bool          // Print the payload instead of submitting
	ExactRunRate bool          // Send the unrounded run rate
	Verbose      bool          // Enable debug logging

	Score         string
	Over          string
	WicketsFallen string
	RunsLast5     string
	WicketsLast5  string
	Country       string
	Venue         string
}

// Errors returned by Run. Both map to a non-zero exit status.
var (
	ErrBlocked = errors.New("prediction blocked")
	ErrFailed  = errors.New("prediction failed")
)
