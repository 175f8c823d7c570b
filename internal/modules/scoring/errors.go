package scoring

import "errors"

// ErrMalformedInput is returned when a StockInput cannot be scored at all.
// It is distinct from a gating rejection, which yields no result and no error.
var ErrMalformedInput = errors.New("malformed stock input")
