package license

import "errors"

var (
	ErrEmptyCode           = errors.New("license code is required")
	ErrEmptyDeviceID       = errors.New("device ID is required")
	ErrEmptyPlanID         = errors.New("plan ID is required")
	ErrInvalidValidity     = errors.New("validity days must be positive")
	ErrDeviceLimitExceeded = errors.New("device limit exceeded")
	ErrLicenseNotFound     = errors.New("license not found")

	// ErrGenerationFailed wraps persistence failures during issuance. The
	// code that failed to persist is discarded.
	ErrGenerationFailed = errors.New("license generation failed")
)
