package predictcli

import (
	"io"
	"os"

	"github.com/okian/cricscore/pkg/logger"
)

// SetupLogging initialises the logger on stderr so stdout carries only the
// report. Verbose enables debug records.
func SetupLogging(verbose bool) error {
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		return err
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return logger.SetLevelString("warn")
}

// ShowHelp prints usage information.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `cricscore predict
=================

Derives match state from the current innings, validates it and asks the
prediction service for the final first-innings score.

Usage:
  predict [options]

Options:
  -url string            Base URL of the prediction service (default "http://127.0.0.1:5000")
  -catalog string        Local venue catalog JSON used instead of GET /venues
  -score string          Current score
  -over string           Current over in decimal notation, e.g. 11.4
  -wickets string        Wickets fallen
  -runs-last5 string     Runs in the last 5 overs
  -wickets-last5 string  Wickets in the last 5 overs
  -country string        Batting country (default: first in the catalog)
  -venue string          Venue (default: first venue of the country)
  -timeout duration      Request timeout (default 10s)
  -exact-run-rate        Send the run rate unrounded
  -dry-run               Print the payload without submitting
  -verbose               Enable debug logging
  -help                  Show this help message

Examples:
  predict -score 94 -over 11.4 -wickets 1 -runs-last5 42 -wickets-last5 1 -country India -venue "Eden Gardens"
  predict -catalog venue_avgscore.json -score 94 -over 11.4 -wickets 1 -runs-last5 42 -wickets-last5 1 -dry-run
`)
}
