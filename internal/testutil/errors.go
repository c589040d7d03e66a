package testutil

import "errors"

// ErrSimulated is a sentinel error for testing storage failure paths
var ErrSimulated = errors.New("simulated storage failure")
