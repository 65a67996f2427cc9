package mesh

import (
	"context"
	"log/slog"
	"time"
)

// heartbeatMonitor probes link liveness with periodic pings. It runs
// only while the client is connected; when the gateway goes silent for
// more than twice the ping interval it force-closes the socket and
// stops, leaving disconnection handling to the connection manager.
type heartbeatMonitor struct {
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	sendPing   func() error
	liveness   func() (lastPing, lastPong time.Time)
	markPing   func(time.Time)
	forceClose func()
}

func (h *heartbeatMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !h.beat() {
				return
			}
		}
	}
}

// beat performs one heartbeat cycle. It returns false when the loop
// must stop: either the link is dead or a ping could not be sent.
func (h *heartbeatMonitor) beat() bool {
	lastPing, lastPong := h.liveness()
	now := h.now()

	if !lastPing.IsZero() && now.Sub(lastPong) > 2*h.interval {
		h.logger.Warn("heartbeat timeout, closing connection",
			"sincePong", now.Sub(lastPong),
		)
		h.forceClose()
		return false
	}

	h.markPing(now)
	if err := h.sendPing(); err != nil {
		h.logger.Error("failed to send ping", "error", err)
		return false
	}
	return true
}
