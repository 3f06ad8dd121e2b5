package services

// Service errors carry the failure kind so controllers can pick a status
// code without string matching. The message is what the client sees.

// ValidationError marks malformed, missing or non-positive input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError marks a uniqueness violation.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// NotFoundError marks an unknown identifier.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }
