package messaging

import (
	"encoding/json"
	"testing"

	"github.com/mudvault/mesh-go/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnvelope() *contracts.Envelope {
	return &contracts.Envelope{
		Version:   contracts.ProtocolVersion,
		ID:        "3f1e2d0a-0000-0000-0000-000000000001",
		Timestamp: "2025-06-01T12:00:00Z",
		Type:      contracts.TypeTell,
		From:      contracts.Endpoint{Mud: "Alice", User: "gandalf"},
		To:        contracts.Endpoint{Mud: "Bob"},
		Payload:   json.RawMessage(`{"message":"hi"}`),
		Metadata:  contracts.DefaultMetadata(),
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec()

	t.Run("decode reproduces every encoded field", func(t *testing.T) {
		original := validEnvelope()
		original.Signature = "sig-abc"
		original.From.DisplayName = "Gandalf the Grey"

		data, err := codec.Encode(original)
		require.NoError(t, err)

		decoded, err := codec.Decode(data)
		require.NoError(t, err)

		assert.Equal(t, original.Version, decoded.Version)
		assert.Equal(t, original.ID, decoded.ID)
		assert.Equal(t, original.Timestamp, decoded.Timestamp)
		assert.Equal(t, original.Type, decoded.Type)
		assert.Equal(t, original.From, decoded.From)
		assert.Equal(t, original.To, decoded.To)
		assert.JSONEq(t, string(original.Payload), string(decoded.Payload))
		assert.Equal(t, original.Metadata, decoded.Metadata)
		assert.Equal(t, original.Signature, decoded.Signature)
	})

	t.Run("absent optional fields stay absent on the wire", func(t *testing.T) {
		data, err := codec.Encode(validEnvelope())
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.NotContains(t, raw, "signature")

		var from map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw["from"], &from))
		assert.Contains(t, from, "mud")
		assert.Contains(t, from, "user")
		assert.NotContains(t, from, "displayName")
		assert.NotContains(t, from, "channel")

		var to map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw["to"], &to))
		assert.NotContains(t, to, "user")
	})

	t.Run("metadata is always emitted in full", func(t *testing.T) {
		data, err := codec.Encode(validEnvelope())
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &raw))

		var meta map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw["metadata"], &meta))
		for _, field := range []string{"priority", "ttl", "encoding", "language", "retry"} {
			assert.Contains(t, meta, field)
		}
	})

	t.Run("encode rejects nil envelope", func(t *testing.T) {
		_, err := codec.Encode(nil)
		assert.Error(t, err)
	})
}

func TestCodecDecodeFailures(t *testing.T) {
	codec := NewCodec()

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := codec.Decode([]byte(`{not json`))

		var malformed *MalformedPayloadError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("frame that is not an object", func(t *testing.T) {
		_, err := codec.Decode([]byte(`[1,2,3]`))

		var malformed *MalformedPayloadError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("reports the first missing required field", func(t *testing.T) {
		cases := []struct {
			drop string
		}{
			{"version"},
			{"id"},
			{"timestamp"},
			{"type"},
			{"from"},
			{"to"},
			{"payload"},
			{"metadata"},
		}

		for _, tc := range cases {
			t.Run(tc.drop, func(t *testing.T) {
				data, err := codec.Encode(validEnvelope())
				require.NoError(t, err)

				var raw map[string]json.RawMessage
				require.NoError(t, json.Unmarshal(data, &raw))
				delete(raw, tc.drop)
				partial, err := json.Marshal(raw)
				require.NoError(t, err)

				_, err = codec.Decode(partial)
				var missing *MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, tc.drop, missing.Field)
			})
		}
	})

	t.Run("field order of the missing report follows the protocol order", func(t *testing.T) {
		// Both version and metadata missing: version is reported.
		_, err := codec.Decode([]byte(`{"id":"x","timestamp":"t","type":"tell","from":{},"to":{},"payload":{}}`))

		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "version", missing.Field)
	})
}

func TestCodecUnknownType(t *testing.T) {
	codec := NewCodec()

	t.Run("unknown type decodes with payload intact", func(t *testing.T) {
		frame := []byte(`{
			"version":"1.0","id":"abc","timestamp":"2025-06-01T12:00:00Z",
			"type":"telepathy",
			"from":{"mud":"Alice"},"to":{"mud":"Bob"},
			"payload":{"thought":"hello","strength":9},
			"metadata":{"priority":5,"ttl":300,"encoding":"utf-8","language":"en","retry":false}
		}`)

		env, err := codec.Decode(frame)
		require.NoError(t, err)
		assert.Equal(t, "telepathy", env.Type)
		assert.JSONEq(t, `{"thought":"hello","strength":9}`, string(env.Payload))
	})
}
