package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	ErrValidation          = errors.New("invalid simulation configuration")
	ErrUnknownCondition    = errors.New("unknown condition")
	ErrDegenerateCondition = errors.New("condition absent from population")
	ErrMismatchedColumns   = fmt.Errorf("%w: column lengths differ", ErrValidation)
)

// ErrorKind classifies a simulation failure for callers that branch on it.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindUnknownCondition    ErrorKind = "unknown_condition"
	KindDegenerateCondition ErrorKind = "degenerate_condition"
)

// SimulationError is the failure value returned by the pipeline. Message is
// meant to be shown to the user as-is.
type SimulationError struct {
	Kind    ErrorKind
	Message string
}

func (e *SimulationError) Error() string {
	return e.Message
}

// Is lets errors.Is match a SimulationError against the package sentinels.
func (e *SimulationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrUnknownCondition:
		return e.Kind == KindUnknownCondition
	case ErrDegenerateCondition:
		return e.Kind == KindDegenerateCondition
	}
	return false
}

// Error constructors with context
func NewPopulationTooSmallError() error {
	return &SimulationError{
		Kind:    KindValidation,
		Message: "No one home! Population is not large enough!",
	}
}

func NewLowPrevalenceError(conditions []string) error {
	return &SimulationError{
		Kind: KindValidation,
		Message: fmt.Sprintf("Good news: not enough patients! Bad news: population is not large enough to support the given prevalence for: %s",
			strings.Join(conditions, ", ")),
	}
}

func NewInvalidPrevalenceError(conditions []string) error {
	return &SimulationError{
		Kind:    KindValidation,
		Message: fmt.Sprintf("prevalence must lie in (0, 1] for: %s", strings.Join(conditions, ", ")),
	}
}

func NewValidationError(field string, reason string) error {
	return &SimulationError{
		Kind:    KindValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
	}
}

func NewUnknownConditionError(condition string, available []string) error {
	return &SimulationError{
		Kind: KindUnknownCondition,
		Message: fmt.Sprintf("%s not found in the population, try with one of these conditions: %s",
			condition, strings.Join(available, ", ")),
	}
}

func NewDegenerateConditionError(condition string) error {
	return &SimulationError{
		Kind: KindDegenerateCondition,
		Message: fmt.Sprintf("Population too fit! No one here has %s, try again with a different condition, prevalence or size",
			condition),
	}
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsUnknownConditionError(err error) bool {
	return errors.Is(err, ErrUnknownCondition)
}

func IsDegenerateConditionError(err error) bool {
	return errors.Is(err, ErrDegenerateCondition)
}

// KindOf returns the kind of a simulation failure, or "" for other errors.
func KindOf(err error) ErrorKind {
	var simErr *SimulationError
	if errors.As(err, &simErr) {
		return simErr.Kind
	}
	if errors.Is(err, ErrValidation) {
		return KindValidation
	}
	return ""
}
