package messaging

import "context"

// Conn is one established connection to the gateway. Send and Receive
// may be called from different goroutines; Receive blocks until a
// frame arrives, the peer closes, or Close is called.
type Conn interface {
	// Send writes one frame.
	Send(data []byte) error

	// Receive blocks until the next inbound frame.
	Receive() ([]byte, error)

	// Close tears the connection down. Any blocked Receive returns
	// with an error.
	Close() error
}

// Dialer establishes connections to a gateway. Implementations live
// under transports/; the client accepts any Dialer so tests can
// substitute an in-memory one.
type Dialer interface {
	// Dial connects to the gateway at url, honoring ctx for timeout
	// and cancellation.
	Dial(ctx context.Context, url string) (Conn, error)
}
