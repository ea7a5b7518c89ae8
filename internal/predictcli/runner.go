package predictcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/cricscore/internal/adapters/gateway"
	service "github.com/okian/cricscore/internal/app"
	"github.com/okian/cricscore/internal/domain/match"
	"github.com/okian/cricscore/internal/domain/prediction"
	"github.com/okian/cricscore/pkg/logger"
)

// Run fills a controller from cfg, prints the derived state, and submits
// unless the form is blocked or DryRun is set.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	log := logger.Named("predict")

	client := gateway.NewClient(cfg.BaseURL,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithLogger(log),
	)
	var venues service.CatalogSource = client
	if cfg.CatalogPath != "" {
		venues = gateway.NewFileCatalog(cfg.CatalogPath)
	}
	ctrl := service.NewController(client,
		service.WithControllerLogger(log),
		service.WithCatalogSource(venues),
		service.WithPayloadRounding(!cfg.ExactRunRate),
	)

	if err := ctrl.LoadCatalog(ctx); err != nil {
		fmt.Fprintln(out, service.MsgCatalogLoad)
	}
	if err := fill(ctx, ctrl, cfg, out); err != nil {
		return err
	}

	snap := ctrl.Snapshot()
	printState(out, snap)
	if !snap.Validation.Submittable {
		return blocked(snap)
	}

	if cfg.DryRun {
		req, err := prediction.NewRequest(snap.Raw, snap.Derived, !cfg.ExactRunRate)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBlocked, err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(req)
	}

	res, err := ctrl.Submit(ctx)
	if errors.Is(err, service.ErrBlockedByValidation) {
		return blocked(ctrl.Snapshot())
	}
	if err != nil {
		fmt.Fprintln(out, service.MsgSubmissionFailed)
		return fmt.Errorf("%w: %w", ErrFailed, err)
	}
	printResult(out, res)
	return nil
}

// fill applies the given fields in form order. An unknown venue is
// replaced by the closest catalog name when one is close enough.
func fill(ctx context.Context, ctrl *service.Controller, cfg *Config, out io.Writer) error {
	fields := []struct {
		field match.Field
		value string
	}{
		{match.FieldScore, cfg.Score},
		{match.FieldOver, cfg.Over},
		{match.FieldWicketsFallen, cfg.WicketsFallen},
		{match.FieldRunsLast5, cfg.RunsLast5},
		{match.FieldWicketsLast5, cfg.WicketsLast5},
	}
	for _, f := range fields {
		if _, err := ctrl.Set(ctx, f.field, f.value); err != nil {
			return err
		}
	}

	if cfg.Country != "" {
		ctrl.SelectCountry(ctx, cfg.Country)
	}
	if cfg.Venue == "" {
		return nil
	}
	venue := cfg.Venue
	cat := ctrl.Catalog()
	country := ctrl.Snapshot().Raw.Country
	if cat != nil && !cat.Has(country, venue) {
		if closest, ok := cat.Suggest(country, venue); ok {
			fmt.Fprintf(out, "Using venue %q for %q\n", closest, venue)
			venue = closest
		}
	}
	_, err := ctrl.Set(ctx, match.FieldVenue, venue)
	return err
}

func blocked(s service.Snapshot) error {
	v := s.Validation
	if v.Message == "" && len(v.Invalid) == 0 && len(v.Missing) > 0 {
		names := make([]string, 0, len(v.Missing))
		for _, f := range v.Missing {
			names = append(names, string(f))
		}
		return fmt.Errorf("%w: missing %s", ErrBlocked, strings.Join(names, ", "))
	}
	return fmt.Errorf("%w: %s", ErrBlocked, v.Reason())
}

func printState(w io.Writer, s service.Snapshot) {
	fmt.Fprintf(w, "Country:          %s\n", s.Raw.Country)
	fmt.Fprintf(w, "Venue:            %s\n", s.Raw.Venue)
	fmt.Fprintf(w, "Wickets Left:     %s\n", intOrDash(s.Derived.WicketsRemaining))
	fmt.Fprintf(w, "Deliveries Left:  %s\n", intOrDash(s.Derived.DeliveriesRemaining))
	rate := s.RunRate
	if rate == "" {
		rate = "-"
	}
	fmt.Fprintf(w, "Current Run Rate: %s\n", rate)
	if v := s.Validation; v.Message != "" || len(v.Invalid) > 0 {
		fmt.Fprintln(w, v.Reason())
	}
}

func printResult(w io.Writer, r prediction.Result) {
	fmt.Fprintf(w, "Predicted final score: %g runs\n", r.PredictedFinalScore)
	fmt.Fprintf(w, "Venue average:         %g runs\n", r.VenueAverageScore)
}

func intOrDash(v match.Int) string {
	n, ok := v.Get()
	if !ok {
		return "-"
	}
	return fmt.Sprint(n)
}

// IsBlocked reports whether err came from a form that could not be sent.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrBlocked)
}
