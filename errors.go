package mesh

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

var (
	// ErrAlreadyConnected is returned by Connect when the client
	// already holds a live gateway connection.
	ErrAlreadyConnected = errors.New("mesh: already connected")

	// ErrNotConnected is returned by send operations while the client
	// is disconnected.
	ErrNotConnected = errors.New("mesh: not connected to gateway")

	// ErrConnectionTimeout indicates the gateway handshake exceeded
	// the configured connect timeout.
	ErrConnectionTimeout = errors.New("mesh: connection timeout")
)

// ValidationError reports invalid caller-supplied input, such as a
// malformed MUD name.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mesh: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ConnectionError reports a transport-level failure.
type ConnectionError struct {
	Op        string    // operation that failed
	URL       string    // gateway URL (sanitized)
	Err       error     // underlying error
	Attempts  int       // attempts made, when driven by the reconnect loop
	Timestamp time.Time // when the error occurred
}

func (e *ConnectionError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("mesh connection error: %s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
	}
	return fmt.Sprintf("mesh connection error: %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports a gateway-signaled authentication
// failure.
type AuthenticationError struct {
	Code    int
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("mesh authentication error %d: %s", e.Code, e.Message)
}

// sanitizeURL strips credentials from a gateway URL before logging.
func sanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	return u.String()
}
