package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mudvault/mesh-go/contracts"
)

// EnvelopeOption configures envelope creation.
type EnvelopeOption func(*contracts.Envelope)

// WithEnvelopeID sets a custom envelope ID.
func WithEnvelopeID(id string) EnvelopeOption {
	return func(e *contracts.Envelope) {
		e.ID = id
	}
}

// WithEnvelopeTimestamp sets a custom timestamp.
func WithEnvelopeTimestamp(timestamp time.Time) EnvelopeOption {
	return func(e *contracts.Envelope) {
		e.Timestamp = timestamp.UTC().Format(time.RFC3339)
	}
}

// WithEnvelopeMetadata overrides the default delivery metadata.
func WithEnvelopeMetadata(metadata contracts.Metadata) EnvelopeOption {
	return func(e *contracts.Envelope) {
		e.Metadata = metadata
	}
}

// WithEnvelopeSignature attaches a signature to the envelope.
func WithEnvelopeSignature(signature string) EnvelopeOption {
	return func(e *contracts.Envelope) {
		e.Signature = signature
	}
}

// Factory builds well-formed envelopes, one constructor per message
// kind. Every envelope gets the current protocol version, a fresh
// unique ID, the current UTC timestamp, and default metadata unless
// overridden through options. Callers never hand-assemble payloads.
type Factory struct{}

// NewFactory creates a new envelope factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewEnvelope builds an envelope of the given type around a payload.
func (f *Factory) NewEnvelope(msgType string, from, to contracts.Endpoint, payload interface{}, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}

	envelope := &contracts.Envelope{
		Version:   contracts.ProtocolVersion,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Type:      msgType,
		From:      from,
		To:        to,
		Payload:   body,
		Metadata:  contracts.DefaultMetadata(),
	}

	for _, opt := range opts {
		opt(envelope)
	}
	return envelope, nil
}

// Tell builds a direct message to a single user.
func (f *Factory) Tell(from, to contracts.Endpoint, message string, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	return f.NewEnvelope(contracts.TypeTell, from, to,
		contracts.TellPayload{Message: message}, opts...)
}

// Emote builds an emote message.
func (f *Factory) Emote(from, to contracts.Endpoint, action string, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	return f.NewEnvelope(contracts.TypeEmote, from, to,
		contracts.EmotePayload{Action: action}, opts...)
}

// Channel builds a channel message. The destination is always the
// broadcast endpoint scoped to the channel.
func (f *Factory) Channel(from contracts.Endpoint, channel, message, action string, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	to := contracts.Endpoint{Mud: contracts.BroadcastMud, Channel: channel}
	return f.NewEnvelope(contracts.TypeChannel, from, to,
		contracts.ChannelPayload{Channel: channel, Message: message, Action: action}, opts...)
}

// WhoRequest builds a who-list request for a target MUD.
func (f *Factory) WhoRequest(from contracts.Endpoint, targetMud string, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	to := contracts.Endpoint{Mud: targetMud}
	return f.NewEnvelope(contracts.TypeWho, from, to,
		contracts.WhoPayload{Request: true}, opts...)
}

// FingerRequest builds a finger request for a user on a target MUD.
func (f *Factory) FingerRequest(from contracts.Endpoint, targetMud, targetUser string, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	to := contracts.Endpoint{Mud: targetMud, User: targetUser}
	return f.NewEnvelope(contracts.TypeFinger, from, to,
		contracts.FingerPayload{User: targetUser, Request: true}, opts...)
}

// LocateRequest builds a mesh-wide locate request for a user.
func (f *Factory) LocateRequest(from contracts.Endpoint, targetUser string, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	to := contracts.Endpoint{Mud: contracts.BroadcastMud}
	return f.NewEnvelope(contracts.TypeLocate, from, to,
		contracts.LocatePayload{User: targetUser, Request: true}, opts...)
}

// Presence builds a presence update addressed to the gateway.
func (f *Factory) Presence(from contracts.Endpoint, payload contracts.PresencePayload, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	to := contracts.Endpoint{Mud: contracts.GatewayMud}
	return f.NewEnvelope(contracts.TypePresence, from, to, payload, opts...)
}

// Auth builds the gateway authentication envelope.
func (f *Factory) Auth(from contracts.Endpoint, mudName, token string, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	to := contracts.Endpoint{Mud: contracts.GatewayMud}
	return f.NewEnvelope(contracts.TypeAuth, from, to,
		contracts.AuthPayload{MudName: mudName, Token: token}, opts...)
}

// Ping builds a liveness probe carrying the current time in
// milliseconds.
func (f *Factory) Ping(from, to contracts.Endpoint, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	return f.NewEnvelope(contracts.TypePing, from, to,
		contracts.PingPayload{Timestamp: time.Now().UnixMilli()}, opts...)
}

// Pong builds a ping reply echoing the original timestamp.
func (f *Factory) Pong(from, to contracts.Endpoint, originalTimestamp int64, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	return f.NewEnvelope(contracts.TypePong, from, to,
		contracts.PingPayload{Timestamp: originalTimestamp}, opts...)
}

// Error builds an error report.
func (f *Factory) Error(from, to contracts.Endpoint, code int, message string, details map[string]interface{}, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	return f.NewEnvelope(contracts.TypeError, from, to,
		contracts.ErrorPayload{Code: code, Message: message, Details: details}, opts...)
}
