package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/mudvault/mesh-go/contracts"
)

// requiredFields lists the envelope fields every frame must carry, in
// the order decode failures report them.
var requiredFields = []string{
	"version",
	"id",
	"timestamp",
	"type",
	"from",
	"to",
	"payload",
	"metadata",
}

// Codec serializes envelopes to and from wire frames. The wire format
// is one UTF-8 JSON object per frame; optional fields that are absent
// from the envelope are omitted entirely, never emitted as null.
type Codec struct{}

// NewCodec creates a new wire codec.
func NewCodec() Codec {
	return Codec{}
}

// Encode renders an envelope into a wire frame.
func (Codec) Encode(e *contracts.Envelope) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("envelope cannot be nil")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}

// Decode parses a wire frame into an envelope. It fails with
// MalformedPayloadError when the frame is not a JSON object and with
// MissingFieldError naming the first missing required field. An
// unrecognized type value is not an error; the envelope is returned
// with its payload intact for the caller to surface as-is.
func (Codec) Decode(data []byte) (*contracts.Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &MalformedPayloadError{Err: err}
	}

	for _, field := range requiredFields {
		if _, ok := fields[field]; !ok {
			return nil, &MissingFieldError{Field: field}
		}
	}

	var envelope contracts.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &MalformedPayloadError{Err: err}
	}
	return &envelope, nil
}
