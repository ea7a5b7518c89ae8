package catalog

import "errors"

// ErrDecode reports a malformed catalog document.
var ErrDecode = errors.New("decode catalog")
