// Package websocket implements the mesh transport over a WebSocket
// connection using gorilla/websocket.
package websocket

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/mudvault/mesh-go/messaging"
)

const defaultWriteTimeout = 10 * time.Second

// Dialer dials mesh gateways over WebSocket.
type Dialer struct {
	header       http.Header
	writeTimeout time.Duration
}

// DialerOption configures the Dialer.
type DialerOption func(*Dialer)

// WithHeader adds an HTTP header to the handshake request.
func WithHeader(key, value string) DialerOption {
	return func(d *Dialer) {
		d.header.Set(key, value)
	}
}

// WithWriteTimeout bounds each outbound frame write.
func WithWriteTimeout(timeout time.Duration) DialerOption {
	return func(d *Dialer) {
		d.writeTimeout = timeout
	}
}

// NewDialer creates a WebSocket dialer.
func NewDialer(options ...DialerOption) *Dialer {
	d := &Dialer{
		header:       http.Header{},
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Dial connects to the gateway at rawURL. http/https URLs are
// normalized to ws/wss. The handshake is bounded by ctx.
func (d *Dialer) Dial(ctx context.Context, rawURL string) (messaging.Conn, error) {
	wsURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	ws, resp, err := gws.DefaultDialer.DialContext(ctx, wsURL, d.header)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return &conn{ws: ws, writeTimeout: d.writeTimeout}, nil
}

// conn adapts a gorilla connection to messaging.Conn. Writes are
// serialized; gorilla permits one concurrent reader and one writer.
type conn struct {
	ws           *gws.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func (c *conn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(gws.TextMessage, data)
}

func (c *conn) Receive() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *conn) Close() error {
	c.writeMu.Lock()
	deadline := time.Now().Add(time.Second)
	_ = c.ws.WriteControl(gws.CloseMessage,
		gws.FormatCloseMessage(gws.CloseNormalClosure, ""), deadline)
	c.writeMu.Unlock()
	return c.ws.Close()
}

// NormalizeURL maps http/https URLs onto their ws/wss equivalents and
// passes ws/wss URLs through untouched.
func NormalizeURL(base string) (string, error) {
	if strings.HasPrefix(base, "ws://") || strings.HasPrefix(base, "wss://") {
		return base, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return u.String(), nil
}
