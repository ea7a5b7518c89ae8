package service

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/cricscore/internal/domain/catalog"
	"github.com/okian/cricscore/internal/domain/match"
	"github.com/okian/cricscore/internal/domain/prediction"
	"github.com/okian/cricscore/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var errUnavailable = errors.New("connection refused")

type fakePredictor struct {
	mu      sync.Mutex
	calls   int
	last    prediction.Request
	result  prediction.Result
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakePredictor) Predict(ctx context.Context, in prediction.Request) (prediction.Result, error) {
	f.mu.Lock()
	f.calls++
	f.last = in
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return prediction.Result{}, ctx.Err()
		}
	}
	return f.result, f.err
}

func (f *fakePredictor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakePredictor) Last() prediction.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type fakeCatalog struct {
	mu    sync.Mutex
	cat   catalog.Catalog
	err   error
	calls int
}

func (f *fakeCatalog) Venues(context.Context) (catalog.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cat, nil
}

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		"India": {
			"Eden Gardens":     165,
			"Wankhede Stadium": 172,
		},
		"Australia": {
			"MCG": 158,
		},
	}
}

func fill(ctx context.Context, c *Controller, raw match.RawInput) {
	for _, f := range match.RequiredFields {
		v, _ := raw.Get(f)
		if _, err := c.Set(ctx, f, v); err != nil {
			panic(err)
		}
	}
}

func scenario() match.RawInput {
	return match.RawInput{
		Score:         "94",
		Over:          "11.4",
		WicketsFallen: "1",
		RunsLast5:     "42",
		WicketsLast5:  "1",
		Country:       "India",
		Venue:         "Eden Gardens",
	}
}
