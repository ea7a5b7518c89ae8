package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/cricscore/internal/predictcli"
)

// Exit statuses.
const (
	exitFailed  = 1
	exitBlocked = 2
)

const defaultTimeout = 10 * time.Second

func main() {
	cfg := &predictcli.Config{}
	flag.StringVar(&cfg.BaseURL, "url", "http://127.0.0.1:5000", "Base URL of the prediction service")
	flag.StringVar(&cfg.CatalogPath, "catalog", "", "Local venue catalog JSON used instead of GET /venues")
	flag.StringVar(&cfg.Score, "score", "", "Current score")
	flag.StringVar(&cfg.Over, "over", "", "Current over, e.g. 11.4")
	flag.StringVar(&cfg.WicketsFallen, "wickets", "", "Wickets fallen")
	flag.StringVar(&cfg.RunsLast5, "runs-last5", "", "Runs in the last 5 overs")
	flag.StringVar(&cfg.WicketsLast5, "wickets-last5", "", "Wickets in the last 5 overs")
	flag.StringVar(&cfg.Country, "country", "", "Batting country")
	flag.StringVar(&cfg.Venue, "venue", "", "Venue")
	flag.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "Request timeout")
	flag.BoolVar(&cfg.ExactRunRate, "exact-run-rate", false, "Send the run rate unrounded")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Print the payload without submitting")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		predictcli.ShowHelp(os.Stdout)
		return
	}

	if err := predictcli.SetupLogging(cfg.Verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(exitFailed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := predictcli.Run(ctx, cfg, os.Stdout); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		if predictcli.IsBlocked(err) {
			os.Exit(exitBlocked)
		}
		os.Exit(exitFailed)
	}
}
