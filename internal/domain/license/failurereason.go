package license

// FailureReason tags a denied verification. Denials are expected outcomes
// and travel as values, never as errors.
type FailureReason string

const (
	ReasonNone                FailureReason = ""
	ReasonNotFound            FailureReason = "not_found"
	ReasonRevoked             FailureReason = "revoked"
	ReasonLocked              FailureReason = "locked"
	ReasonExpired             FailureReason = "expired"
	ReasonHashMismatch        FailureReason = "hash_mismatch"
	ReasonDeviceLimitExceeded FailureReason = "device_limit_exceeded"
)

func (r FailureReason) String() string {
	return string(r)
}

// CountsTowardLockout reports whether the reason increments failedAttempts.
func (r FailureReason) CountsTowardLockout() bool {
	return r == ReasonExpired || r == ReasonHashMismatch
}

// Message is the human readable text returned to API callers.
func (r FailureReason) Message() string {
	switch r {
	case ReasonNotFound:
		return "License not found"
	case ReasonRevoked:
		return "License has been revoked"
	case ReasonLocked:
		return "Too many failed attempts, license temporarily locked"
	case ReasonExpired:
		return "License has expired"
	case ReasonHashMismatch:
		return "License verification failed"
	case ReasonDeviceLimitExceeded:
		return "Device limit reached for this license"
	default:
		return ""
	}
}
