package captions

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput            = errors.New("empty input")
	ErrConfiguration         = errors.New("configuration error")
	ErrSerializationFidelity = errors.New("serialization fidelity error")
	ErrIO                    = errors.New("io error")
)

// EmptyInputError reports that a transcript produced no usable words or cues.
type EmptyInputError struct {
	// Segments is the number of segments inspected before giving up.
	Segments int
}

func (e *EmptyInputError) Error() string {
	if e.Segments > 0 {
		return fmt.Sprintf("empty input: %d segments contained no timed words", e.Segments)
	}
	return "empty input: no timed words"
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// ErrorKind classifies the error for queue status mapping.
func (e *EmptyInputError) ErrorKind() string { return "validation" }

// ConfigurationError reports an invalid style or chunking parameter.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("configuration: %s=%q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigurationError) ErrorKind() string { return "configuration" }

// SerializationFidelityError reports that a written document does not carry
// the requested style, or that a repair rewrite found nothing to rewrite.
type SerializationFidelityError struct {
	Rule   string
	Detail string
}

func (e *SerializationFidelityError) Error() string {
	return fmt.Sprintf("serialization fidelity: %s: %s", e.Rule, e.Detail)
}

func (e *SerializationFidelityError) Is(target error) bool {
	return target == ErrSerializationFidelity
}

func (e *SerializationFidelityError) ErrorKind() string { return "serialization" }

// IOError wraps a filesystem failure while reading or writing a document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

func (e *IOError) ErrorKind() string { return "io" }

func configErr(field, value, reason string) error {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}
