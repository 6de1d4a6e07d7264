package sidecar

import "errors"

// Sentinel errors for programmatic handling.
var (
	ErrTooFewInputs = errors.New("need at least two input documents")
	ErrNotTable     = errors.New("document root is not a table")
)
