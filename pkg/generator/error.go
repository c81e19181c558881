package generator

import "errors"

// ErrEmptyQuestion is returned without contacting the model when the
// question is empty.
var ErrEmptyQuestion = errors.New("question is empty")

// GenerationError is the single failure type of Generate. Message carries the
// upstream description; Err is the underlying cause.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(err error) *GenerationError {
	return &GenerationError{Message: err.Error(), Err: err}
}
