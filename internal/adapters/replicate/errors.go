package replicate

import "errors"

// Sentinel kinds for inference errors.
var (
	ErrMissingToken   = errors.New("replicate api token is not set")
	ErrUnavailable    = errors.New("inference client unavailable")
	ErrPredictionFail = errors.New("prediction failed")
	ErrInvalidRef     = errors.New("invalid model reference")
)
