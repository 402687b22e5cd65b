package domain

// ValidationError represents a submission that was rejected before reaching
// the matching core. The core itself never fails: no counterparty and no
// resting price are normal outcomes, not errors.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
