package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/okian/cricscore/internal/adapters/http/api"
	service "github.com/okian/cricscore/internal/app"
	"github.com/okian/cricscore/internal/domain/catalog"
	"github.com/okian/cricscore/internal/domain/prediction"
	"github.com/okian/cricscore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type mockPredictor struct {
	mu      sync.Mutex
	result  prediction.Result
	err     error
	last    prediction.Request
	started chan struct{}
	release chan struct{}
}

func (m *mockPredictor) Predict(ctx context.Context, in prediction.Request) (prediction.Result, error) {
	m.mu.Lock()
	m.last = in
	started, release := m.started, m.release
	m.mu.Unlock()
	if started != nil {
		close(started)
		<-release
	}
	return m.result, m.err
}

type mockVenues struct {
	cat catalog.Catalog
	err error
}

func (m *mockVenues) Venues(context.Context) (catalog.Catalog, error) {
	return m.cat, m.err
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newRouter(p *mockPredictor, venues *mockVenues) (http.Handler, *service.Service) {
	svc := service.New(
		service.WithPredictor(p),
		service.WithVenueSource(venues),
	)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	r := chi.NewRouter()
	r.Use(api.RequestLogger(logger.Named("http")))
	api.NewServer(svc, svc).Register(context.Background(), r)
	return r, svc
}

func do(h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type sessionState struct {
	Raw struct {
		Score   string `json:"score"`
		Over    string `json:"over"`
		Country string `json:"country"`
		Venue   string `json:"venue"`
	} `json:"raw"`
	Derived struct {
		WicketsRemaining    *int     `json:"wicketsRemaining"`
		DeliveriesRemaining *int     `json:"deliveriesRemaining"`
		CurrentRunRate      *float64 `json:"currentRunRate"`
	} `json:"derived"`
	DisplayRunRate string `json:"displayRunRate"`
	Validation     struct {
		FieldErrors map[string]string `json:"fieldErrors"`
		Message     string            `json:"message"`
		Rule        string            `json:"rule"`
		Submittable bool              `json:"submittable"`
	} `json:"validation"`
	SubmitError  string `json:"submitError"`
	CatalogError string `json:"catalogError"`
}

func createSession(h http.Handler) (string, sessionState) {
	w := do(h, http.MethodPost, "/sessions", "")
	var body struct {
		ID    string       `json:"id"`
		State sessionState `json:"state"`
	}
	So(w.Code, ShouldEqual, http.StatusCreated)
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body.ID, body.State
}

func decodeState(w *httptest.ResponseRecorder) sessionState {
	var s sessionState
	So(json.Unmarshal(w.Body.Bytes(), &s), ShouldBeNil)
	return s
}

const scenarioPatch = `{"score":94,"over":"11.4","wicketsFallen":1,"runsLast5":42,"wicketsLast5":1,"country":"India","venue":"Eden Gardens"}`

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		"India":     {"Eden Gardens": 165, "Wankhede Stadium": 172},
		"Australia": {"MCG": 158},
	}
}

func TestServer_Basics(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		h, _ := newRouter(&mockPredictor{}, &mockVenues{cat: testCatalog()})

		Convey("Then health serves metrics", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats are served as JSON", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"sessions":0`)
		})

		Convey("Then the venue catalog is served", func() {
			w := do(h, http.MethodGet, "/venues", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var cat map[string]map[string]float64
			So(json.Unmarshal(w.Body.Bytes(), &cat), ShouldBeNil)
			So(cat["India"]["Eden Gardens"], ShouldEqual, 165)
		})

		Convey("Then a misspelt venue resolves to the closest name", func() {
			w := do(h, http.MethodGet, "/venues?country=India&venue=eden garden", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"venue":"Eden Gardens"`)
			So(w.Body.String(), ShouldContainSubstring, `"exact":false`)
		})

		Convey("Then an unrelated venue is not found", func() {
			w := do(h, http.MethodGet, "/venues?country=India&venue=Lords", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then unknown methods are rejected", func() {
			w := do(h, http.MethodPut, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("Given a catalog source that is down", t, func() {
		h, _ := newRouter(&mockPredictor{}, &mockVenues{err: errors.New("dial tcp: refused")})

		Convey("Then GET /venues reports the catalog message", func() {
			w := do(h, http.MethodGet, "/venues", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, service.MsgCatalogLoad)
		})

		Convey("Then new sessions carry the catalog message", func() {
			_, state := createSession(h)
			So(state.CatalogError, ShouldEqual, service.MsgCatalogLoad)
		})
	})
}

func TestServer_Evaluate(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		h, _ := newRouter(&mockPredictor{}, &mockVenues{cat: testCatalog()})

		Convey("When a legal form is evaluated", func() {
			w := do(h, http.MethodPost, "/evaluate", scenarioPatch)
			s := decodeState(w)

			Convey("Then derived values and validation are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(*s.Derived.WicketsRemaining, ShouldEqual, 9)
				So(*s.Derived.DeliveriesRemaining, ShouldEqual, 50)
				So(s.DisplayRunRate, ShouldEqual, "8.06")
				So(s.Validation.Submittable, ShouldBeTrue)
				So(s.Validation.Rule, ShouldEqual, "none")
			})
		})

		Convey("When overs exceed the innings", func() {
			w := do(h, http.MethodPost, "/evaluate", `{"over":"20.1","wicketsFallen":"11"}`)
			s := decodeState(w)

			Convey("Then the wickets rule wins and undefined values are null", func() {
				So(s.Validation.Rule, ShouldEqual, "wickets_range")
				So(s.Validation.Message, ShouldEqual, "Wickets fallen must be between 0 and 10.")
				So(s.Derived.DeliveriesRemaining, ShouldBeNil)
				So(s.Derived.CurrentRunRate, ShouldBeNil)
			})
		})

		Convey("When the body names an unknown field", func() {
			w := do(h, http.MethodPost, "/evaluate", `{"toss":"won"}`)

			Convey("Then 400 unknown_field is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"unknown_field"`)
			})
		})

		Convey("When the body is not an object", func() {
			w := do(h, http.MethodPost, "/evaluate", `[1,2]`)

			Convey("Then 400 bad_request is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
			})
		})
	})
}

func TestServer_Sessions(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		p := &mockPredictor{result: prediction.Result{PredictedFinalScore: 162, VenueAverageScore: 155}}
		h, svc := newRouter(p, &mockVenues{cat: testCatalog()})
		id, state := createSession(h)

		Convey("Then the new session has the first venue preselected", func() {
			So(id, ShouldNotBeEmpty)
			So(state.Raw.Country, ShouldEqual, "Australia")
			So(state.Raw.Venue, ShouldEqual, "MCG")
			So(state.Validation.Submittable, ShouldBeFalse)
		})

		Convey("When a country is chosen", func() {
			w := do(h, http.MethodPatch, "/sessions/"+id, `{"country":"India"}`)
			s := decodeState(w)

			Convey("Then its first venue is selected", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(s.Raw.Country, ShouldEqual, "India")
				So(s.Raw.Venue, ShouldEqual, "Eden Gardens")
			})
		})

		Convey("When the form is filled in and submitted", func() {
			w := do(h, http.MethodPatch, "/sessions/"+id, scenarioPatch)
			So(w.Code, ShouldEqual, http.StatusOK)
			w = do(h, http.MethodPost, "/sessions/"+id+"/submit", "")

			Convey("Then the prediction is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res prediction.Result
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.PredictedFinalScore, ShouldEqual, 162)
				So(p.last.DeliveryLeft, ShouldEqual, 50)
				So(p.last.Venue, ShouldEqual, "Eden Gardens")
			})

			Convey("Then the HTML view shows the result card", func() {
				w := do(h, http.MethodGet, "/sessions/"+id, "", "Accept", "text/html")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(w.Body.String(), ShouldContainSubstring, "<strong>162</strong>")
				So(w.Body.String(), ShouldContainSubstring, "(Venue Average: 155 runs)")
			})
		})

		Convey("When the over has an illegal ball digit", func() {
			w := do(h, http.MethodPatch, "/sessions/"+id, `{"over":"12.6"}`)
			s := decodeState(w)

			Convey("Then the message is attached to the over field", func() {
				So(s.Validation.Message, ShouldEqual, "Invalid over format. Balls can only be from 0 to 5.")
				So(s.Validation.FieldErrors["over"], ShouldEqual, s.Validation.Message)
			})

			Convey("And submitting is blocked", func() {
				w := do(h, http.MethodPost, "/sessions/"+id+"/submit", "")
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, `"code":"blocked_by_validation"`)
			})
		})

		Convey("When every field is filled but the score is not a number", func() {
			do(h, http.MethodPatch, "/sessions/"+id, scenarioPatch)
			w := do(h, http.MethodPatch, "/sessions/"+id, `{"score":"abc"}`)
			s := decodeState(w)

			Convey("Then the session is not submittable", func() {
				So(s.Validation.Submittable, ShouldBeFalse)
				So(s.Validation.Message, ShouldBeEmpty)
			})

			Convey("And submitting names the unusable field", func() {
				w := do(h, http.MethodPost, "/sessions/"+id+"/submit", "")
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, "Enter a valid number for: score.")
				So(w.Body.String(), ShouldNotContainSubstring, "All fields are required.")
			})
		})

		Convey("When wickets in the last five overs are fractional", func() {
			do(h, http.MethodPatch, "/sessions/"+id, scenarioPatch)
			do(h, http.MethodPatch, "/sessions/"+id, `{"wicketsLast5":2.5}`)
			w := do(h, http.MethodPost, "/sessions/"+id+"/submit", "")

			Convey("Then submission is refused with 422", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, "Enter a valid number for: wicketsLast5.")
			})
		})

		Convey("When a required field is left empty", func() {
			w := do(h, http.MethodPost, "/sessions/"+id+"/submit", "")

			Convey("Then every field is asked for", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, "All fields are required.")
			})
		})

		Convey("When an unknown field is patched", func() {
			w := do(h, http.MethodPatch, "/sessions/"+id, `{"score":"10","toss":"won"}`)

			Convey("Then nothing is applied", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				s := decodeState(do(h, http.MethodGet, "/sessions/"+id, ""))
				So(s.Raw.Score, ShouldBeEmpty)
			})
		})

		Convey("When the prediction service fails", func() {
			p.err = errors.New("status 500")
			do(h, http.MethodPatch, "/sessions/"+id, scenarioPatch)
			w := do(h, http.MethodPost, "/sessions/"+id+"/submit", "")

			Convey("Then 502 is returned and the session shows the message", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(w.Body.String(), ShouldContainSubstring, service.MsgSubmissionFailed)
				s := decodeState(do(h, http.MethodGet, "/sessions/"+id, ""))
				So(s.SubmitError, ShouldEqual, service.MsgSubmissionFailed)
				So(s.Raw.Score, ShouldEqual, "94")
			})
		})

		Convey("When a second submission arrives while one is outstanding", func() {
			do(h, http.MethodPatch, "/sessions/"+id, scenarioPatch)
			p.started = make(chan struct{})
			p.release = make(chan struct{})
			first := make(chan int, 1)
			go func() {
				first <- do(h, http.MethodPost, "/sessions/"+id+"/submit", "").Code
			}()
			<-p.started
			w := do(h, http.MethodPost, "/sessions/"+id+"/submit", "")
			close(p.release)

			Convey("Then it is rejected with 409", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(<-first, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the session is deleted", func() {
			w := do(h, http.MethodDelete, "/sessions/"+id, "")

			Convey("Then it is gone", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(do(h, http.MethodGet, "/sessions/"+id, "").Code, ShouldEqual, http.StatusNotFound)
				So(do(h, http.MethodDelete, "/sessions/"+id, "").Code, ShouldEqual, http.StatusNotFound)
				So(svc.GetStats()["sessions"], ShouldEqual, 0)
			})
		})

		Convey("When an unknown session is requested", func() {
			w := do(h, http.MethodGet, "/sessions/missing", "")

			Convey("Then 404 session_not_found is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, `"code":"session_not_found"`)
			})
		})
	})
}
