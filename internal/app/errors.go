package service

import "errors"

// Sentinel kinds for run errors.
var (
	ErrUnknownExperiment = errors.New("unknown experiment")
)
