// Package contracts defines the MudVault Mesh wire protocol: the
// message envelope, endpoint addressing, delivery metadata, the typed
// payloads for each message kind, and the protocol error codes.
//
// Every frame on the mesh is one Envelope serialized as UTF-8 JSON.
// The Payload field stays raw (json.RawMessage) so envelopes with
// types this client does not know about pass through unmodified;
// DecodePayload extracts the typed payload for known types.
package contracts
