package synth

import "errors"

// Sentinel kinds for generation errors.
var (
	ErrBadConfig    = errors.New("bad generation config")
	ErrVerification = errors.New("dataset verification failed")
)
