package inventory

import "errors"

// ErrInvalidInput marks caller mistakes (bad quantities, missing fields) so
// transports can map them to 400 instead of 409/500. Wrap with %w.
var ErrInvalidInput = errors.New("invalid input")
