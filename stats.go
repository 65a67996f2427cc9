package mesh

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of client traffic counters.
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	DecodeErrors     int64
	LastLatency      time.Duration
}

type clientStats struct {
	sent         atomic.Int64
	received     atomic.Int64
	decodeErrors atomic.Int64
	lastLatency  atomic.Int64 // nanoseconds
}

func (s *clientStats) snapshot() Stats {
	return Stats{
		MessagesSent:     s.sent.Load(),
		MessagesReceived: s.received.Load(),
		DecodeErrors:     s.decodeErrors.Load(),
		LastLatency:      time.Duration(s.lastLatency.Load()),
	}
}
