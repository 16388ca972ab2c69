package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable is returned when the record source cannot be read or parsed.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrMalformedRecord is returned when a record is missing a required field.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrEmptyCorpus is returned when an index is built from zero vectors.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrGenerationUnavailable is matched by every GenerationError.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrInvalidK is returned when a retrieval count is not positive.
	ErrInvalidK = errors.New("k must be a positive integer")
)

// GenerationErrorKind classifies why the answer generator failed.
type GenerationErrorKind string

const (
	GenerationUnreachable GenerationErrorKind = "unreachable"
	GenerationBackend     GenerationErrorKind = "backend"
	GenerationTimeout     GenerationErrorKind = "timeout"
	GenerationEmpty       GenerationErrorKind = "empty"
)

// GenerationError is returned by answer generators.
type GenerationError struct {
	Kind  GenerationErrorKind
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation %s (model %s)", e.Kind, e.Model)
	}
	return fmt.Sprintf("generation %s (model %s): %v", e.Kind, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is makes every GenerationError match ErrGenerationUnavailable.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationUnavailable
}
