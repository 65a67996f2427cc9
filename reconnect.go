package mesh

import (
	"context"
	"time"

	"github.com/mudvault/mesh-go/messaging"
)

// startReconnect launches the reconnect loop if auto-reconnect is
// still enabled and no loop is already running.
func (c *Client) startReconnect() {
	c.mu.Lock()
	if !c.autoReconnect || c.reconnectCancel != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.reconnectCancel = cancel
	gatewayURL := c.gatewayURL
	apiKey := c.apiKey
	c.mu.Unlock()

	c.reconnectWG.Add(1)
	go c.runReconnect(ctx, gatewayURL, apiKey)
}

// stopReconnect cancels any running reconnect loop and waits for it
// to terminate.
func (c *Client) stopReconnect() {
	c.mu.Lock()
	cancel := c.reconnectCancel
	c.reconnectCancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.reconnectWG.Wait()
}

func (c *Client) clearReconnect() {
	c.mu.Lock()
	cancel := c.reconnectCancel
	c.reconnectCancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// runReconnect drives exponential-backoff reconnection: each attempt
// doubles the delay, and the schedule stops permanently once the
// attempt budget is spent, until the caller invokes Connect again.
func (c *Client) runReconnect(ctx context.Context, gatewayURL, apiKey string) {
	defer c.reconnectWG.Done()

	for {
		c.mu.Lock()
		if !c.autoReconnect || c.state.ReconnectAttempts >= c.maxReconnectAttempts {
			c.mu.Unlock()
			c.clearReconnect()
			return
		}
		c.state.ReconnectAttempts++
		attempt := c.state.ReconnectAttempts
		c.mu.Unlock()

		delay := c.backoff.NextDelay(attempt)
		c.logger.Info("scheduling reconnect",
			"attempt", attempt,
			"maxAttempts", c.maxReconnectAttempts,
			"delay", delay,
		)
		c.events.Emit(messaging.EventReconnecting, nil, messaging.ReconnectInfo{Attempt: attempt})

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		err := c.Connect(ctx, gatewayURL, apiKey)
		if err == nil {
			c.logger.Info("reconnected to mesh gateway", "attempts", attempt)
			c.clearReconnect()
			return
		}
		if ctx.Err() != nil {
			return
		}

		c.logger.Error("reconnect attempt failed", "attempt", attempt, "error", err)
		c.events.Emit(messaging.EventReconnectFailed, nil, messaging.ReconnectInfo{Attempt: attempt, Err: err})

		c.mu.RLock()
		remaining := c.autoReconnect && c.state.ReconnectAttempts < c.maxReconnectAttempts
		c.mu.RUnlock()
		if !remaining {
			c.logger.Error("max reconnect attempts reached", "attempts", attempt)
			c.events.Emit(messaging.EventReconnectGiveUp, nil, nil)
			c.clearReconnect()
			return
		}
	}
}
