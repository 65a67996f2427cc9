package messaging

import "fmt"

// MalformedPayloadError indicates a frame that is not valid JSON or
// does not have the envelope structure.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("mesh: malformed frame: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

// MissingFieldError indicates a structurally valid frame missing a
// required envelope field. Field names the first missing field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("mesh: missing required field: %s", e.Field)
}
