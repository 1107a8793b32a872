package perturb

import "errors"

// Sentinel kinds for perturbation errors.
var (
	ErrInvalidParameter = errors.New("invalid perturbation parameter")
)
