package mesh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type heartbeatProbe struct {
	monitor *heartbeatMonitor

	lastPing    time.Time
	lastPong    time.Time
	pings       int
	marked      []time.Time
	forceClosed bool
	sendErr     error
}

func newHeartbeatProbe(interval time.Duration, now time.Time) *heartbeatProbe {
	p := &heartbeatProbe{}
	p.monitor = &heartbeatMonitor{
		interval: interval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      func() time.Time { return now },
		sendPing: func() error {
			if p.sendErr != nil {
				return p.sendErr
			}
			p.pings++
			return nil
		},
		liveness:   func() (time.Time, time.Time) { return p.lastPing, p.lastPong },
		markPing: func(t time.Time) {
			p.lastPing = t
			p.marked = append(p.marked, t)
		},
		forceClose: func() { p.forceClosed = true },
	}
	return p
}

func TestHeartbeatBeat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	interval := 30 * time.Second

	t.Run("healthy link sends a ping and records it", func(t *testing.T) {
		p := newHeartbeatProbe(interval, now)
		p.lastPing = now.Add(-interval)
		p.lastPong = now.Add(-interval)

		assert.True(t, p.monitor.beat())
		assert.Equal(t, 1, p.pings)
		require.Len(t, p.marked, 1)
		assert.Equal(t, now, p.marked[0])
		assert.False(t, p.forceClosed)
	})

	t.Run("silence beyond twice the interval closes the link", func(t *testing.T) {
		p := newHeartbeatProbe(interval, now)
		p.lastPing = now.Add(-61 * time.Second)
		p.lastPong = now.Add(-61 * time.Second)

		assert.False(t, p.monitor.beat())
		assert.True(t, p.forceClosed)
		assert.Zero(t, p.pings, "no ping after declaring the link dead")
	})

	t.Run("silence of exactly twice the interval is still alive", func(t *testing.T) {
		p := newHeartbeatProbe(interval, now)
		p.lastPing = now.Add(-60 * time.Second)
		p.lastPong = now.Add(-60 * time.Second)

		assert.True(t, p.monitor.beat())
		assert.False(t, p.forceClosed)
	})

	t.Run("no timeout before the first ping went out", func(t *testing.T) {
		p := newHeartbeatProbe(interval, now)
		p.lastPong = now.Add(-time.Hour)

		assert.True(t, p.monitor.beat())
		assert.False(t, p.forceClosed)
		assert.Equal(t, 1, p.pings)
	})

	t.Run("a send failure stops the loop", func(t *testing.T) {
		p := newHeartbeatProbe(interval, now)
		p.sendErr = errors.New("socket gone")

		assert.False(t, p.monitor.beat())
		assert.False(t, p.forceClosed)
	})
}

func TestHeartbeatRun(t *testing.T) {
	t.Run("stops on context cancellation", func(t *testing.T) {
		p := newHeartbeatProbe(time.Hour, time.Now())
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			p.monitor.run(ctx)
			close(done)
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("heartbeat loop did not stop")
		}
	})

	t.Run("beats on every tick until the link dies", func(t *testing.T) {
		p := newHeartbeatProbe(5*time.Millisecond, time.Now())
		p.lastPong = time.Now()

		done := make(chan struct{})
		go func() {
			p.monitor.run(context.Background())
			close(done)
		}()

		// lastPong never advances, so after ~2 intervals the monitor
		// declares the link dead and exits on its own.
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("heartbeat loop did not detect the dead link")
		}
		assert.True(t, p.forceClosed)
		assert.GreaterOrEqual(t, p.pings, 1)
	})
}
