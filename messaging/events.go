package messaging

import "time"

// Lifecycle event names emitted by the client. Decoded envelopes are
// additionally emitted under EventMessage and under their literal
// envelope type string.
const (
	EventConnected       = "connected"
	EventAuthenticated   = "authenticated"
	EventDisconnected    = "disconnected"
	EventMessage         = "message"
	EventError           = "error"
	EventPong            = "pong"
	EventReconnecting    = "reconnecting"
	EventReconnectFailed = "reconnect_failed"
	EventReconnectGiveUp = "reconnect_give_up"
)

// WebSocket-style closure codes reported in DisconnectInfo.
const (
	CloseNormal   = 1000
	CloseAbnormal = 1006
)

// DisconnectInfo accompanies EventDisconnected.
type DisconnectInfo struct {
	Code   int
	Reason string
}

// ReconnectInfo accompanies EventReconnecting and EventReconnectFailed.
// Err is set only for failed attempts.
type ReconnectInfo struct {
	Attempt int
	Err     error
}

// PongInfo accompanies EventPong with the measured round-trip latency.
type PongInfo struct {
	Latency time.Duration
}
