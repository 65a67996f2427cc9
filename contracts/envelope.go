package contracts

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the mesh protocol version spoken by this client.
const ProtocolVersion = "1.0"

// Well-known endpoint names.
const (
	// BroadcastMud addresses every MUD on the mesh.
	BroadcastMud = "*"
	// GatewayMud addresses the relay itself.
	GatewayMud = "Gateway"
)

// Message types carried in Envelope.Type. Decoding never rejects an
// unknown type; these are the types this client knows how to build.
const (
	TypeTell     = "tell"
	TypeEmote    = "emote"
	TypeEmoteTo  = "emoteto"
	TypeChannel  = "channel"
	TypeWho      = "who"
	TypeFinger   = "finger"
	TypeLocate   = "locate"
	TypePresence = "presence"
	TypeAuth     = "auth"
	TypePing     = "ping"
	TypePong     = "pong"
	TypeError    = "error"
)

// Endpoint identifies the source or destination of an envelope.
type Endpoint struct {
	Mud         string `json:"mud"`
	User        string `json:"user,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Channel     string `json:"channel,omitempty"`
}

// String renders the endpoint as user@mud for logs and display.
func (e Endpoint) String() string {
	if e.User != "" {
		return e.User + "@" + e.Mud
	}
	return e.Mud
}

// Metadata carries delivery options for an envelope. All fields are
// emitted on the wire; only optional envelope fields are omitted.
type Metadata struct {
	Priority int    `json:"priority"`
	TTL      int    `json:"ttl"`
	Encoding string `json:"encoding"`
	Language string `json:"language"`
	Retry    bool   `json:"retry"`
}

// DefaultMetadata returns the protocol default delivery options.
func DefaultMetadata() Metadata {
	return Metadata{
		Priority: 5,
		TTL:      300,
		Encoding: "utf-8",
		Language: "en",
	}
}

// Envelope is one complete mesh protocol message. Payload stays raw so
// unrecognized message types pass through untouched; use DecodePayload
// to extract the typed payload for known types.
type Envelope struct {
	Version   string          `json:"version"`
	ID        string          `json:"id"`
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	From      Endpoint        `json:"from"`
	To        Endpoint        `json:"to"`
	Payload   json.RawMessage `json:"payload"`
	Metadata  Metadata        `json:"metadata"`
	Signature string          `json:"signature,omitempty"`
}

// DecodePayload unmarshals the envelope payload into the provided
// payload struct.
func (e *Envelope) DecodePayload(v interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("envelope %s has no payload", e.ID)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}
