package api

import (
	"errors"
	"net/http"

	"github.com/okian/cricscore/internal/domain/match"
)

// EvaluateHandler handles stateless form evaluation.
type EvaluateHandler struct {
	deps Dependencies
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps Dependencies) *EvaluateHandler {
	return &EvaluateHandler{deps: deps}
}

type evaluateResponse struct {
	Raw            match.RawInput         `json:"raw"`
	Derived        match.DerivedState     `json:"derived"`
	DisplayRunRate string                 `json:"displayRunRate"`
	Validation     match.ValidationResult `json:"validation"`
}

// HandleEvaluate handles POST /evaluate requests.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r.Body)
	if err != nil {
		writeFieldsError(w, err)
		return
	}
	var raw match.RawInput
	for _, fv := range fields {
		raw, _ = raw.With(fv.field, fv.value)
	}
	d, v := h.deps.Evaluate(r.Context(), raw)
	writeJSON(w, http.StatusOK, evaluateResponse{
		Raw:            raw,
		Derived:        d,
		DisplayRunRate: d.DisplayRunRate(),
		Validation:     v,
	})
}

func writeFieldsError(w http.ResponseWriter, err error) {
	if errors.Is(err, match.ErrUnknownField) {
		writeError(w, http.StatusBadRequest, "unknown_field", err)
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request", err)
}
