package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/cricscore/internal/domain/catalog"
	"github.com/okian/cricscore/internal/domain/match"
	"github.com/okian/cricscore/internal/domain/prediction"
	"github.com/okian/cricscore/pkg/logger"
	"github.com/okian/cricscore/pkg/metrics"
)

// Predictor submits a payload to the prediction service.
type Predictor interface {
	Predict(ctx context.Context, in prediction.Request) (prediction.Result, error)
}

// CatalogSource provides the venue catalog.
type CatalogSource interface {
	Venues(ctx context.Context) (catalog.Catalog, error)
}

// Snapshot is a copy of a controller's state.
type Snapshot struct {
	Raw          match.RawInput         `json:"raw"`
	Derived      match.DerivedState     `json:"derived"`
	RunRate      string                 `json:"displayRunRate"`
	Validation   match.ValidationResult `json:"validation"`
	Result       *prediction.Result     `json:"result,omitempty"`
	SubmitError  string                 `json:"submitError,omitempty"`
	CatalogError string                 `json:"catalogError,omitempty"`
	InFlight     bool                   `json:"inFlight"`

	// SubmitErr and CatalogErr keep the underlying errors for callers.
	SubmitErr  error `json:"-"`
	CatalogErr error `json:"-"`
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the controller's logger.
func WithControllerLogger(l logger.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPayloadRounding controls whether the run rate is sent rounded to two
// decimals. Enabled by default.
func WithPayloadRounding(round bool) ControllerOption {
	return func(c *Controller) {
		c.roundRunRate = round
	}
}

// WithResetOnSuccess clears the match fields after a successful submission.
// Country and venue are kept.
func WithResetOnSuccess(reset bool) ControllerOption {
	return func(c *Controller) {
		c.resetOnSuccess = reset
	}
}

// WithCatalogSource sets where LoadCatalog reads venues from.
func WithCatalogSource(src CatalogSource) ControllerOption {
	return func(c *Controller) {
		c.venues = src
	}
}

// Controller owns the state of one match form. Every edit re-derives and
// re-validates synchronously; Submit allows a single request in flight.
type Controller struct {
	mu sync.Mutex

	raw        match.RawInput
	derived    match.DerivedState
	validation match.ValidationResult
	catalog    catalog.Catalog
	result     *prediction.Result
	submitErr  error
	catalogErr error
	inFlight   bool

	predictor      Predictor
	venues         CatalogSource
	roundRunRate   bool
	resetOnSuccess bool
	logger         logger.Logger
}

// NewController creates a controller with an empty form.
func NewController(p Predictor, opts ...ControllerOption) *Controller {
	c := &Controller{
		predictor:    p,
		roundRunRate: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("controller")
	}
	c.derived, c.validation = match.Recompute(c.raw)
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Raw:        c.raw,
		Derived:    c.derived,
		RunRate:    c.derived.DisplayRunRate(),
		Validation: c.validation,
		InFlight:   c.inFlight,
		SubmitErr:  c.submitErr,
		CatalogErr: c.catalogErr,
	}
	s.Validation.FieldErrors = make(map[match.Field]string, len(c.validation.FieldErrors))
	for k, v := range c.validation.FieldErrors {
		s.Validation.FieldErrors[k] = v
	}
	s.Validation.Missing = append([]match.Field(nil), c.validation.Missing...)
	s.Validation.Invalid = append([]match.Field(nil), c.validation.Invalid...)
	if c.result != nil {
		r := *c.result
		s.Result = &r
	}
	if c.submitErr != nil {
		s.SubmitError = MsgSubmissionFailed
	}
	if c.catalogErr != nil {
		s.CatalogError = MsgCatalogLoad
	}
	return s
}

// Catalog returns the catalog loaded by LoadCatalog, if any.
func (c *Controller) Catalog() catalog.Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog
}

// Set replaces one raw field and recomputes.
func (c *Controller) Set(ctx context.Context, f match.Field, value string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.raw.With(f, value)
	if err != nil {
		return c.snapshotLocked(), err
	}
	c.raw = raw
	c.recomputeLocked(ctx, match.DependsOn(f))
	return c.snapshotLocked(), nil
}

// SelectCountry sets the country and, when the catalog lists it, selects
// its first venue.
func (c *Controller) SelectCountry(ctx context.Context, country string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.raw.Country = country
	if venues := c.catalog.Venues(country); len(venues) > 0 {
		c.raw.Venue = venues[0]
	}
	c.recomputeLocked(ctx, false)
	return c.snapshotLocked()
}

// recomputeLocked refreshes validation, and the derived state when an input
// it depends on changed.
func (c *Controller) recomputeLocked(ctx context.Context, derive bool) {
	if derive {
		c.derived = match.DeriveMetrics(c.raw)
		metrics.RecordRecompute()
	}
	c.validation = match.Validate(c.raw, c.derived)
	metrics.RecordValidationOutcome(c.validation.Rule.String())
	if c.validation.Message != "" {
		c.logger.Debug(ctx, "match state rejected",
			logger.String("rule", c.validation.Rule.String()),
			logger.String("message", c.validation.Message),
		)
	}
}

// LoadCatalog fetches the venue catalog. On success the first country and
// venue are preselected when none is chosen yet. On failure the error is
// kept in the state and country/venue stay as they were.
func (c *Controller) LoadCatalog(ctx context.Context) error {
	if c.venues == nil {
		return fmt.Errorf("%w: no catalog source", ErrCatalogLoad)
	}
	cat, err := c.venues.Venues(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.catalogErr = fmt.Errorf("%w: %w", ErrCatalogLoad, err)
		metrics.RecordCatalogLoad("failure")
		c.logger.Warn(ctx, "venue catalog load failed", logger.Error(err))
		return c.catalogErr
	}
	metrics.RecordCatalogLoad("success")
	c.catalog = cat
	c.catalogErr = nil
	if c.raw.Country == "" {
		country, venue := cat.First()
		c.raw.Country, c.raw.Venue = country, venue
		c.recomputeLocked(ctx, false)
	}
	return nil
}

// Submit sends the current form to the prediction service. It returns
// ErrBlockedByValidation when the form is not submittable and
// ErrAlreadyInFlight while another submission is outstanding.
func (c *Controller) Submit(ctx context.Context) (prediction.Result, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		metrics.RecordSubmission("already_in_flight")
		return prediction.Result{}, ErrAlreadyInFlight
	}
	if !c.validation.Submittable {
		c.mu.Unlock()
		metrics.RecordSubmission("blocked")
		return prediction.Result{}, ErrBlockedByValidation
	}
	req, err := prediction.NewRequest(c.raw, c.derived, c.roundRunRate)
	if err != nil {
		c.mu.Unlock()
		metrics.RecordSubmission("blocked")
		return prediction.Result{}, fmt.Errorf("%w: %w", ErrBlockedByValidation, err)
	}
	c.inFlight = true
	c.result = nil
	c.submitErr = nil
	c.mu.Unlock()

	c.logger.Info(ctx, "submitting prediction",
		logger.String("country", req.Country),
		logger.String("venue", req.Venue),
		logger.Int("deliveryLeft", req.DeliveryLeft),
		logger.Int("wicketsLeft", req.WicketsLeft),
	)
	res, err := c.predictor.Predict(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.submitErr = fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
		c.result = nil
		metrics.RecordSubmission("failure")
		return prediction.Result{}, c.submitErr
	}
	c.result = &res
	metrics.RecordSubmission("success")
	if c.resetOnSuccess {
		c.raw = match.RawInput{Country: c.raw.Country, Venue: c.raw.Venue}
		c.recomputeLocked(ctx, true)
	}
	return res, nil
}

// Reset clears the form, the result and any submission error. The loaded
// catalog is kept.
func (c *Controller) Reset(ctx context.Context) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = match.RawInput{}
	c.result = nil
	c.submitErr = nil
	c.recomputeLocked(ctx, true)
	return c.snapshotLocked()
}
