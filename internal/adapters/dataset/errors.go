package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrOpenFailed        = errors.New("open dataset failed")
)
