package service

import "errors"

// Sentinel kinds for controller and service errors.
var (
	ErrBlockedByValidation = errors.New("submission blocked by validation")
	ErrAlreadyInFlight     = errors.New("submission already in flight")
	ErrSubmissionFailed    = errors.New("submission failed")
	ErrCatalogLoad         = errors.New("venue catalog unavailable")
	ErrSessionNotFound     = errors.New("session not found")
	ErrTooManySessions     = errors.New("too many sessions")
)

// Messages shown in place of a raw error.
const (
	MsgSubmissionFailed = "Prediction failed. Please check your inputs and try again."
	MsgCatalogLoad      = "Failed to load venue data. Please ensure the prediction service is running."
)
