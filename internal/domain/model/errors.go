package model

import "errors"

// Sentinel kinds for data validation errors.
var (
	ErrInvalidQuestion = errors.New("invalid question")
)
