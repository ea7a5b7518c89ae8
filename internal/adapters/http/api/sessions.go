package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/cricscore/internal/adapters/http/view"
	service "github.com/okian/cricscore/internal/app"
	"github.com/okian/cricscore/internal/domain/match"
)

// SessionsHandler handles match session requests.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

type createResponse struct {
	ID    string           `json:"id"`
	State service.Snapshot `json:"state"`
}

// HandleCreate handles POST /sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, snap, err := h.deps.CreateSession(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrTooManySessions) {
			writeError(w, http.StatusTooManyRequests, "too_many_sessions", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.Header().Set("Location", "/sessions/"+id)
	writeJSON(w, http.StatusCreated, createResponse{ID: id, State: snap})
}

// HandleGet handles GET /sessions/{id} requests. Clients accepting
// text/html get the rendered session fragment.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	snap := ctrl.Snapshot()
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := view.Session(snap).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandlePatch handles PATCH /sessions/{id} requests. Fields are applied in
// the order they appear in the body. Choosing a country also selects its
// first venue unless the body sets venue afterwards.
func (h *SessionsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	fields, err := decodeFields(r.Body)
	if err != nil {
		writeFieldsError(w, err)
		return
	}

	ctx := r.Context()
	for _, fv := range fields {
		if fv.field == match.FieldCountry {
			ctrl.SelectCountry(ctx, fv.value)
			continue
		}
		if _, err := ctrl.Set(ctx, fv.field, fv.value); err != nil {
			writeFieldsError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// HandleDelete handles DELETE /sessions/{id} requests.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmit handles POST /sessions/{id}/submit requests.
func (h *SessionsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := ctrl.Submit(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, service.ErrAlreadyInFlight):
		writeError(w, http.StatusConflict, "already_in_flight", err)
	case errors.Is(err, service.ErrBlockedByValidation):
		msg := ctrl.Snapshot().Validation.Reason()
		if msg == "" {
			msg = err.Error()
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: "blocked_by_validation", Message: msg})
	case errors.Is(err, service.ErrSubmissionFailed):
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: "submission_failed", Message: service.MsgSubmissionFailed})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func (h *SessionsHandler) session(w http.ResponseWriter, r *http.Request) (*service.Controller, bool) {
	ctrl, err := h.deps.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", err)
		return nil, false
	}
	return ctrl, true
}
