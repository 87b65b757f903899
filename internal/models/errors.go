package models

import "fmt"

const (
	CodeInvalidRequest   = "invalid_request"
	CodeValidation       = "validation_error"
	CodeInterpretation   = "interpretation_error"
	CodeUnknownLocation  = "unknown_location"
	CodeDateResolution   = "date_resolution_error"
	CodePassengerMix     = "passenger_mix_error"
	CodeInvariant        = "invariant_violation"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeRequestTimeout   = "request_timeout"
)

// ValidationError reports malformed or out-of-range structured input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Code() string { return CodeValidation }

type UnknownLocationError struct {
	Location string
}

func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("unknown location %q", e.Location)
}

func (e *UnknownLocationError) Code() string { return CodeUnknownLocation }

type DateResolutionError struct {
	Phrase string
	Reason string
}

func (e *DateResolutionError) Error() string {
	if e.Phrase == "" {
		return "cannot resolve dates: " + e.Reason
	}
	return fmt.Sprintf("cannot resolve date %q: %s", e.Phrase, e.Reason)
}

func (e *DateResolutionError) Code() string { return CodeDateResolution }

type PassengerMixError struct {
	Reason string
}

func (e *PassengerMixError) Error() string {
	return "invalid passenger mix: " + e.Reason
}

func (e *PassengerMixError) Code() string { return CodePassengerMix }

// InterpretationError is returned when free text cannot be turned into a
// usable request. Err carries the blocking sub-resolver failure.
type InterpretationError struct {
	Field string
	Err   error
}

func (e *InterpretationError) Error() string {
	if e.Err == nil {
		return "could not interpret " + e.Field
	}
	return "could not interpret " + e.Field + ": " + e.Err.Error()
}

func (e *InterpretationError) Unwrap() error {
	return e.Err
}

func (e *InterpretationError) Code() string { return CodeInterpretation }

// InvariantViolation means a malformed request reached the link builder.
// It is always a server-side bug.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Reason
}

func (e *InvariantViolation) Code() string { return CodeInvariant }
