package gateway

import "errors"

// Sentinel kinds for gateway errors.
var (
	ErrRequest          = errors.New("prediction service request failed")
	ErrUnexpectedStatus = errors.New("prediction service returned unexpected status")
	ErrDecodeResponse   = errors.New("prediction service response malformed")
)
