// Package messaging provides the protocol plumbing for the mesh
// client: the wire codec, the envelope factory, the event dispatcher,
// and the transport interfaces the client speaks through.
//
//   - Codec: encodes and decodes envelopes, enforcing the required
//     envelope fields on inbound frames
//   - Factory: builds well-formed envelopes, one constructor per
//     message kind
//   - EventDispatcher: named-event handler registry; handlers are
//     dispatched fire-and-forget so a slow handler never stalls the
//     receive loop
//   - Dialer/Conn: the minimal transport surface; the WebSocket
//     implementation lives in transports/websocket
package messaging
