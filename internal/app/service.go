// Package service hosts match sessions: one Controller per session, all
// sharing a prediction gateway and a cached venue catalog.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/cricscore/internal/domain/catalog"
	"github.com/okian/cricscore/internal/domain/match"
	"github.com/okian/cricscore/pkg/logger"
	"github.com/okian/cricscore/pkg/metrics"
)

const defaultMaxSessions = 1000

// Service implements the API dependencies for match sessions.
type Service struct {
	mu sync.RWMutex

	sessions map[string]*Controller
	venues   *cachedCatalog

	predictor      Predictor
	source         CatalogSource
	maxSessions    int
	roundRunRate   bool
	resetOnSuccess bool

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPredictor sets the prediction gateway.
func WithPredictor(p Predictor) Option {
	return func(s *Service) {
		s.predictor = p
	}
}

// WithVenueSource sets where the venue catalog comes from.
func WithVenueSource(src CatalogSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithRunRateRounding controls payload rounding for new sessions.
func WithRunRateRounding(round bool) Option {
	return func(s *Service) {
		s.roundRunRate = round
	}
}

// WithSessionReset makes sessions clear their match fields after a
// successful submission.
func WithSessionReset(reset bool) Option {
	return func(s *Service) {
		s.resetOnSuccess = reset
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:     make(map[string]*Controller),
		maxSessions:  defaultMaxSessions,
		roundRunRate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.venues = &cachedCatalog{source: s.source}
	return s
}

// Start prepares the service and warms the venue catalog. A catalog failure
// is logged, not returned: sessions retry on creation.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.predictor == nil {
		return fmt.Errorf("service: no predictor configured")
	}

	if _, err := s.venues.Venues(ctx); err != nil {
		s.logger.Warn(ctx, "venue catalog not available at startup", logger.Error(err))
	}
	s.started = true
	s.logger.Info(ctx, "match session service started",
		logger.Int("maxSessions", s.maxSessions),
		logger.Bool("roundRunRate", s.roundRunRate),
	)
	return nil
}

// Stop drops every session.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.sessions = make(map[string]*Controller)
	metrics.UpdateActiveSessions(0)
	s.started = false
	s.logger.Info(context.Background(), "match session service stopped")
}

// CreateSession opens a new session and loads the venue catalog into it.
// A catalog failure does not prevent the session from being created.
func (s *Service) CreateSession(ctx context.Context) (string, Snapshot, error) {
	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		return "", Snapshot{}, ErrTooManySessions
	}
	id := uuid.New().String()
	ctrl := NewController(s.predictor,
		WithControllerLogger(s.sessionLogger(id)),
		WithCatalogSource(s.venues),
		WithPayloadRounding(s.roundRunRate),
		WithResetOnSuccess(s.resetOnSuccess),
	)
	s.sessions[id] = ctrl
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(count)
	_ = ctrl.LoadCatalog(ctx)
	return id, ctrl.Snapshot(), nil
}

func (s *Service) sessionLogger(id string) logger.Logger {
	if s.logger == nil {
		return nil
	}
	return s.logger.With(logger.String("session", id))
}

// Session returns the controller of a session.
func (s *Service) Session(_ context.Context, id string) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ctrl, nil
}

// DeleteSession discards a session.
func (s *Service) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(count)
	return nil
}

// Evaluate derives and validates a form without keeping any state.
func (s *Service) Evaluate(_ context.Context, raw match.RawInput) (match.DerivedState, match.ValidationResult) {
	d, v := match.Recompute(raw)
	metrics.RecordRecompute()
	metrics.RecordValidationOutcome(v.Rule.String())
	return d, v
}

// Venues returns the cached venue catalog, fetching it if needed.
func (s *Service) Venues(ctx context.Context) (catalog.Catalog, error) {
	return s.venues.Venues(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inFlight := 0
	for _, ctrl := range s.sessions {
		if ctrl.Snapshot().InFlight {
			inFlight++
		}
	}
	return map[string]interface{}{
		"started":        s.started,
		"sessions":       len(s.sessions),
		"maxSessions":    s.maxSessions,
		"inFlight":       inFlight,
		"catalogLoaded":  s.venues.loaded(),
		"roundRunRate":   s.roundRunRate,
		"resetOnSuccess": s.resetOnSuccess,
	}
}

// cachedCatalog keeps the first successfully fetched catalog.
type cachedCatalog struct {
	mu     sync.Mutex
	source CatalogSource
	cat    catalog.Catalog
}

func (c *cachedCatalog) Venues(ctx context.Context) (catalog.Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cat != nil {
		return c.cat, nil
	}
	if c.source == nil {
		return nil, fmt.Errorf("%w: no catalog source", ErrCatalogLoad)
	}
	cat, err := c.source.Venues(ctx)
	if err != nil {
		return nil, err
	}
	c.cat = cat
	return cat, nil
}

func (c *cachedCatalog) loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cat != nil
}
