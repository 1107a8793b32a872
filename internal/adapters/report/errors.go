package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrRenderFailed      = errors.New("render report failed")
)
