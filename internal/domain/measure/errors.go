package measure

import "errors"

// Sentinel kinds for metric errors.
var (
	ErrEmptyBatch       = errors.New("empty batch")
	ErrInsufficientData = errors.New("insufficient data")
)
