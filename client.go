package mesh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mudvault/mesh-go/contracts"
	"github.com/mudvault/mesh-go/internal/reliability"
	"github.com/mudvault/mesh-go/messaging"
	wstransport "github.com/mudvault/mesh-go/transports/websocket"
)

const (
	defaultReconnectInterval    = 5 * time.Second
	defaultMaxReconnectAttempts = 10
	defaultHeartbeatInterval    = 30 * time.Second
	defaultConnectTimeout       = 10 * time.Second

	// authGracePeriod is how long the client waits for a gateway
	// error before treating authentication as done. The protocol has
	// no positive auth acknowledgment; this is best effort.
	authGracePeriod = time.Second

	// systemUser attributes client traffic with no originating player.
	systemUser = "System"
)

// ConnectionState is the client's view of the gateway link. It is
// owned by the Client and mutated only on state-machine transitions.
type ConnectionState struct {
	Connected         bool
	Authenticated     bool
	ReconnectAttempts int
	LastPing          time.Time
	LastPong          time.Time
}

// Client connects a MUD to the MudVault Mesh. It drives the
// connection lifecycle (connect, authenticate, heartbeat, listen,
// reconnect) and delivers decoded envelopes and lifecycle events to
// handlers registered with On.
type Client struct {
	mudName string

	reconnectInterval    time.Duration
	maxReconnectAttempts int
	heartbeatInterval    time.Duration
	connectTimeout       time.Duration
	authGrace            time.Duration

	logger  *slog.Logger
	dialer  messaging.Dialer
	codec   messaging.Codec
	factory *messaging.Factory
	events  *messaging.EventDispatcher
	backoff reliability.BackoffPolicy

	mu            sync.RWMutex
	conn          messaging.Conn
	state         ConnectionState
	autoReconnect bool // cleared by Disconnect
	gatewayURL    string
	apiKey        string
	cancelBg      context.CancelFunc

	reconnectCancel context.CancelFunc

	bgWG        sync.WaitGroup // heartbeat and auth-grace goroutines
	listenWG    sync.WaitGroup // receive loop
	reconnectWG sync.WaitGroup // reconnect loop

	stats clientStats
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger for the client and its dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithAutoReconnect enables or disables automatic reconnection after
// an unexpected disconnect.
func WithAutoReconnect(enabled bool) Option {
	return func(c *Client) {
		c.autoReconnect = enabled
	}
}

// WithReconnectInterval sets the base delay of the exponential
// reconnect backoff.
func WithReconnectInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.reconnectInterval = interval
	}
}

// WithMaxReconnectAttempts bounds the reconnect schedule.
func WithMaxReconnectAttempts(attempts int) Option {
	return func(c *Client) {
		c.maxReconnectAttempts = attempts
	}
}

// WithHeartbeatInterval sets the ping cadence. The link is considered
// dead when no inbound traffic arrives for twice this interval.
func WithHeartbeatInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.heartbeatInterval = interval
	}
}

// WithConnectTimeout bounds the gateway handshake.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.connectTimeout = timeout
	}
}

// WithDialer replaces the default WebSocket transport.
func WithDialer(dialer messaging.Dialer) Option {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// NewClient creates a mesh client for the named MUD.
func NewClient(mudName string, options ...Option) (*Client, error) {
	if !contracts.IsValidMudName(mudName) {
		return nil, &ValidationError{
			Field:  "mud name",
			Value:  mudName,
			Reason: "must be 1-64 alphanumeric, underscore, or dash characters",
		}
	}

	c := &Client{
		mudName:              mudName,
		autoReconnect:        true,
		reconnectInterval:    defaultReconnectInterval,
		maxReconnectAttempts: defaultMaxReconnectAttempts,
		heartbeatInterval:    defaultHeartbeatInterval,
		connectTimeout:       defaultConnectTimeout,
		authGrace:            authGracePeriod,
		logger:               slog.Default(),
		codec:                messaging.NewCodec(),
		factory:              messaging.NewFactory(),
	}

	for _, opt := range options {
		opt(c)
	}

	if c.dialer == nil {
		c.dialer = wstransport.NewDialer()
	}
	c.events = messaging.NewEventDispatcher(messaging.WithDispatcherLogger(c.logger))
	c.backoff = reliability.NewExponentialBackoff(c.reconnectInterval)

	return c, nil
}

// Connect establishes the gateway connection, sends the auth
// envelope, and starts the heartbeat and receive loops. It returns
// once the connection is up; inbound traffic is delivered through
// registered handlers.
func (c *Client) Connect(ctx context.Context, gatewayURL, apiKey string) error {
	c.mu.Lock()
	if c.state.Connected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.gatewayURL = gatewayURL
	c.apiKey = apiKey
	c.mu.Unlock()

	c.logger.Info("connecting to mesh gateway", "url", sanitizeURL(gatewayURL))

	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	conn, err := c.dialer.Dial(dialCtx, gatewayURL)
	if err != nil {
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
			err = ErrConnectionTimeout
		}
		return &ConnectionError{
			Op:        "connect",
			URL:       sanitizeURL(gatewayURL),
			Err:       err,
			Timestamp: time.Now(),
		}
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	now := time.Now()

	c.mu.Lock()
	if c.state.Connected {
		c.mu.Unlock()
		bgCancel()
		_ = conn.Close()
		return ErrAlreadyConnected
	}
	c.conn = conn
	c.cancelBg = bgCancel
	c.state.Connected = true
	c.state.ReconnectAttempts = 0
	c.state.LastPing = time.Time{}
	// Seed liveness with the connect time so a gateway that never
	// sends anything still trips the heartbeat timeout.
	c.state.LastPong = now
	c.mu.Unlock()

	c.logger.Info("connected to mesh gateway", "mud", c.mudName)
	c.events.Emit(messaging.EventConnected, nil, nil)

	c.startHeartbeat(bgCtx, conn)

	if err := c.sendAuth(); err != nil {
		c.logger.Error("failed to send auth envelope", "error", err)
		bgCancel()
		c.bgWG.Wait()
		_ = conn.Close()
		c.mu.Lock()
		c.conn = nil
		c.cancelBg = nil
		c.state.Connected = false
		c.mu.Unlock()
		return err
	}
	c.startAuthGrace(bgCtx)

	c.listenWG.Add(1)
	go c.listen(bgCtx, conn)

	return nil
}

// Disconnect tears the connection down and suppresses any further
// reconnection until the next explicit Connect. Background loops are
// stopped and awaited before the socket is released.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	c.autoReconnect = false
	c.mu.Unlock()

	c.stopReconnect()

	c.mu.Lock()
	if !c.state.Connected {
		c.mu.Unlock()
		return nil
	}
	c.state.Connected = false
	c.state.Authenticated = false
	conn := c.conn
	c.conn = nil
	cancel := c.cancelBg
	c.cancelBg = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.bgWG.Wait()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	c.listenWG.Wait()

	c.logger.Info("disconnected from mesh gateway", "mud", c.mudName)
	c.events.Emit(messaging.EventDisconnected, nil, messaging.DisconnectInfo{
		Code:   messaging.CloseNormal,
		Reason: "Normal closure",
	})
	return err
}

func (c *Client) startHeartbeat(ctx context.Context, conn messaging.Conn) {
	hb := &heartbeatMonitor{
		interval: c.heartbeatInterval,
		logger:   c.logger,
		now:      time.Now,
		sendPing: func() error {
			env, err := c.factory.Ping(c.selfEndpoint(), contracts.Endpoint{Mud: contracts.GatewayMud})
			if err != nil {
				return err
			}
			return c.send(env)
		},
		liveness: func() (time.Time, time.Time) {
			c.mu.RLock()
			defer c.mu.RUnlock()
			return c.state.LastPing, c.state.LastPong
		},
		markPing: func(t time.Time) {
			c.mu.Lock()
			c.state.LastPing = t
			c.mu.Unlock()
		},
		forceClose: func() {
			_ = conn.Close()
		},
	}

	c.bgWG.Add(1)
	go func() {
		defer c.bgWG.Done()
		hb.run(ctx)
	}()
}

func (c *Client) sendAuth() error {
	c.mu.RLock()
	apiKey := c.apiKey
	c.mu.RUnlock()

	env, err := c.factory.Auth(c.selfEndpoint(), c.mudName, apiKey)
	if err != nil {
		return err
	}
	return c.send(env)
}

// startAuthGrace flips the client to authenticated after the grace
// period, unless the connection dropped or an auth error arrived
// first.
func (c *Client) startAuthGrace(ctx context.Context) {
	c.bgWG.Add(1)
	go func() {
		defer c.bgWG.Done()

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.authGrace):
		}

		c.mu.Lock()
		authed := c.state.Connected && !c.state.Authenticated
		if authed {
			c.state.Authenticated = true
		}
		c.mu.Unlock()

		if authed {
			c.logger.Info("authenticated with mesh gateway", "mud", c.mudName)
			c.events.Emit(messaging.EventAuthenticated, nil, nil)
		}
	}()
}

// listen is the receive loop. Frame-level errors are logged and
// emitted but never fatal; only a transport error ends the loop.
func (c *Client) listen(ctx context.Context, conn messaging.Conn) {
	defer c.listenWG.Done()

	for {
		data, err := conn.Receive()
		if err != nil {
			if ctx.Err() != nil {
				// User-initiated shutdown; Disconnect owns the state.
				return
			}
			c.logger.Info("connection closed", "error", err)
			c.handleDisconnection()
			return
		}
		c.handleFrame(data)
	}
}

func (c *Client) handleFrame(data []byte) {
	env, err := c.codec.Decode(data)
	if err != nil {
		c.stats.decodeErrors.Add(1)
		c.logger.Error("failed to decode frame", "error", err)
		c.events.Emit(messaging.EventError, nil, err)
		return
	}

	c.stats.received.Add(1)
	c.mu.Lock()
	// Any inbound traffic counts as liveness.
	c.state.LastPong = time.Now()
	c.mu.Unlock()

	switch env.Type {
	case contracts.TypePing:
		c.handlePing(env)
	case contracts.TypePong:
		c.handlePong(env)
	case contracts.TypeError:
		c.handleError(env)
	default:
		c.events.Emit(messaging.EventMessage, env, nil)
		c.events.Emit(env.Type, env, nil)
	}
}

func (c *Client) handlePing(env *contracts.Envelope) {
	var p contracts.PingPayload
	if err := env.DecodePayload(&p); err != nil {
		c.logger.Error("malformed ping payload", "error", err)
		return
	}

	pong, err := c.factory.Pong(c.selfEndpoint(), contracts.Endpoint{Mud: contracts.GatewayMud}, p.Timestamp)
	if err != nil {
		return
	}
	if err := c.send(pong); err != nil {
		c.logger.Error("failed to send pong", "error", err)
	}
}

func (c *Client) handlePong(env *contracts.Envelope) {
	var p contracts.PingPayload
	if err := env.DecodePayload(&p); err != nil {
		c.logger.Error("malformed pong payload", "error", err)
		return
	}

	latency := time.Duration(time.Now().UnixMilli()-p.Timestamp) * time.Millisecond
	c.stats.lastLatency.Store(int64(latency))
	c.events.Emit(messaging.EventPong, env, messaging.PongInfo{Latency: latency})
}

func (c *Client) handleError(env *contracts.Envelope) {
	var p contracts.ErrorPayload
	if err := env.DecodePayload(&p); err != nil {
		c.logger.Error("malformed error payload", "error", err)
		return
	}
	c.logger.Error("gateway reported error", "code", p.Code, "message", p.Message)

	if p.Code == contracts.CodeAuthenticationFailed {
		c.mu.Lock()
		c.state.Authenticated = false
		c.mu.Unlock()
		c.events.Emit(messaging.EventError, env, &AuthenticationError{Code: p.Code, Message: p.Message})
		return
	}
	c.events.Emit(messaging.EventError, env, &p)
}

// handleDisconnection routes an unexpected closure through the
// disconnection path and hands off to the reconnect scheduler when
// enabled. It runs on the receive-loop goroutine.
func (c *Client) handleDisconnection() {
	c.mu.Lock()
	if !c.state.Connected {
		c.mu.Unlock()
		return
	}
	c.state.Connected = false
	c.state.Authenticated = false
	conn := c.conn
	c.conn = nil
	cancel := c.cancelBg
	c.cancelBg = nil
	auto := c.autoReconnect
	attempts := c.state.ReconnectAttempts
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.bgWG.Wait()
	if conn != nil {
		_ = conn.Close()
	}

	c.events.Emit(messaging.EventDisconnected, nil, messaging.DisconnectInfo{
		Code:   messaging.CloseAbnormal,
		Reason: "Connection lost",
	})

	if auto && attempts < c.maxReconnectAttempts {
		c.startReconnect()
	}
}

// send encodes and writes one envelope.
func (c *Client) send(env *contracts.Envelope) error {
	c.mu.RLock()
	conn := c.conn
	connected := c.state.Connected
	c.mu.RUnlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	data, err := c.codec.Encode(env)
	if err != nil {
		return err
	}
	if err := conn.Send(data); err != nil {
		return &ConnectionError{
			Op:        "send",
			URL:       sanitizeURL(c.gatewayURLSnapshot()),
			Err:       err,
			Timestamp: time.Now(),
		}
	}
	c.stats.sent.Add(1)
	return nil
}

func (c *Client) selfEndpoint() contracts.Endpoint {
	return contracts.Endpoint{Mud: c.mudName}
}

func (c *Client) gatewayURLSnapshot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gatewayURL
}

// SendTell sends a direct message to a user on another MUD.
func (c *Client) SendTell(to contracts.Endpoint, message string) error {
	from := contracts.Endpoint{Mud: c.mudName, User: systemUser}
	env, err := c.factory.Tell(from, to, message)
	if err != nil {
		return err
	}
	return c.send(env)
}

// SendEmote sends an emote to a user on another MUD.
func (c *Client) SendEmote(to contracts.Endpoint, action, user string) error {
	if user == "" {
		user = systemUser
	}
	from := contracts.Endpoint{Mud: c.mudName, User: user}
	env, err := c.factory.Emote(from, to, action)
	if err != nil {
		return err
	}
	return c.send(env)
}

// SendChannelMessage posts a message to a mesh channel.
func (c *Client) SendChannelMessage(channel, message, user string) error {
	return c.sendChannel(channel, message, user, contracts.ChannelActionMessage)
}

// JoinChannel subscribes a user to a mesh channel.
func (c *Client) JoinChannel(channel, user string) error {
	return c.sendChannel(channel, "", user, contracts.ChannelActionJoin)
}

// LeaveChannel unsubscribes a user from a mesh channel.
func (c *Client) LeaveChannel(channel, user string) error {
	return c.sendChannel(channel, "", user, contracts.ChannelActionLeave)
}

func (c *Client) sendChannel(channel, message, user, action string) error {
	if user == "" {
		user = systemUser
	}
	from := contracts.Endpoint{Mud: c.mudName, User: user}
	env, err := c.factory.Channel(from, channel, message, action)
	if err != nil {
		return err
	}
	return c.send(env)
}

// RequestWho asks a MUD for its online user list.
func (c *Client) RequestWho(targetMud string) error {
	env, err := c.factory.WhoRequest(c.selfEndpoint(), targetMud)
	if err != nil {
		return err
	}
	return c.send(env)
}

// RequestFinger asks a MUD for details about one of its users.
func (c *Client) RequestFinger(targetMud, targetUser string) error {
	env, err := c.factory.FingerRequest(c.selfEndpoint(), targetMud, targetUser)
	if err != nil {
		return err
	}
	return c.send(env)
}

// RequestLocate searches the whole mesh for a user.
func (c *Client) RequestLocate(targetUser string) error {
	env, err := c.factory.LocateRequest(c.selfEndpoint(), targetUser)
	if err != nil {
		return err
	}
	return c.send(env)
}

// SetUserOnline announces a user as online to the gateway.
func (c *Client) SetUserOnline(user contracts.UserInfo) error {
	from := contracts.Endpoint{Mud: c.mudName, User: user.Username}
	env, err := c.factory.Presence(from, contracts.PresencePayload{
		Status:   contracts.PresenceOnline,
		Activity: user.Location,
		Location: user.Location,
	})
	if err != nil {
		return err
	}
	return c.send(env)
}

// SetUserOffline announces a user as offline to the gateway.
func (c *Client) SetUserOffline(username string) error {
	from := contracts.Endpoint{Mud: c.mudName, User: username}
	env, err := c.factory.Presence(from, contracts.PresencePayload{
		Status: contracts.PresenceOffline,
	})
	if err != nil {
		return err
	}
	return c.send(env)
}

// On registers a handler for a lifecycle event, the generic "message"
// event, or a specific envelope type.
func (c *Client) On(event string, handler messaging.Handler) messaging.HandlerID {
	return c.events.On(event, handler)
}

// Off removes the identified handlers for an event, or all of them
// when no IDs are given.
func (c *Client) Off(event string, ids ...messaging.HandlerID) {
	c.events.Off(event, ids...)
}

// IsConnected reports whether the gateway connection is up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Connected
}

// IsAuthenticated reports whether the client considers itself
// authenticated with the gateway.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Authenticated
}

// State returns a copy of the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// MudName returns the validated MUD identifier this client was
// created with.
func (c *Client) MudName() string {
	return c.mudName
}

// Stats returns a snapshot of client traffic counters.
func (c *Client) Stats() Stats {
	return c.stats.snapshot()
}
