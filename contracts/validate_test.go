package contracts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidMudName(t *testing.T) {
	t.Run("accepts alphanumeric underscore and dash", func(t *testing.T) {
		valid := []string{
			"a",
			"MyMud",
			"mud_42",
			"dark-tower",
			"X",
			strings.Repeat("a", 64),
		}
		for _, name := range valid {
			assert.True(t, IsValidMudName(name), "expected %q to be valid", name)
		}
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		invalid := []string{
			"",
			strings.Repeat("a", 65),
			"has space",
			"dot.mud",
			"slash/mud",
			"ünïcode",
			"tab\tmud",
		}
		for _, name := range invalid {
			assert.False(t, IsValidMudName(name), "expected %q to be invalid", name)
		}
	})
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	envelopeAged := func(age time.Duration) *Envelope {
		return &Envelope{
			Timestamp: now.Add(-age).Format(time.RFC3339),
			Metadata:  DefaultMetadata(),
		}
	}

	t.Run("fresh envelope is not expired", func(t *testing.T) {
		assert.False(t, isExpiredAt(envelopeAged(0), now))
	})

	t.Run("one second inside the TTL is not expired", func(t *testing.T) {
		assert.False(t, isExpiredAt(envelopeAged(299*time.Second), now))
	})

	t.Run("exactly at the TTL is not expired", func(t *testing.T) {
		assert.False(t, isExpiredAt(envelopeAged(300*time.Second), now))
	})

	t.Run("one second past the TTL is expired", func(t *testing.T) {
		assert.True(t, isExpiredAt(envelopeAged(301*time.Second), now))
	})

	t.Run("unparseable timestamp is expired", func(t *testing.T) {
		e := &Envelope{Timestamp: "yesterday", Metadata: DefaultMetadata()}
		assert.True(t, isExpiredAt(e, now))
	})
}

func TestSanitizeMessage(t *testing.T) {
	t.Run("strips non-printable characters", func(t *testing.T) {
		assert.Equal(t, "hello world", SanitizeMessage("hello\x00 world\x1b"))
	})

	t.Run("keeps newlines and tabs", func(t *testing.T) {
		assert.Equal(t, "a\tb\nc", SanitizeMessage("a\tb\nc"))
	})

	t.Run("truncates oversized messages", func(t *testing.T) {
		long := strings.Repeat("x", 5000)
		assert.Len(t, SanitizeMessage(long), 4096)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "hi", SanitizeMessage("  hi  "))
	})
}

func TestFormatForDisplay(t *testing.T) {
	from := Endpoint{Mud: "DarkTower", User: "gandalf"}

	build := func(msgType string, payload string) *Envelope {
		return &Envelope{
			Type:     msgType,
			From:     from,
			Payload:  []byte(payload),
			Metadata: DefaultMetadata(),
		}
	}

	t.Run("tell", func(t *testing.T) {
		e := build(TypeTell, `{"message":"hello there"}`)
		assert.Equal(t, "gandalf@DarkTower tells you: hello there", FormatForDisplay(e))
	})

	t.Run("channel message", func(t *testing.T) {
		e := build(TypeChannel, `{"channel":"gossip","message":"hi all","action":"message"}`)
		assert.Equal(t, "[gossip] gandalf@DarkTower: hi all", FormatForDisplay(e))
	})

	t.Run("channel join", func(t *testing.T) {
		e := build(TypeChannel, `{"channel":"gossip","message":"","action":"join"}`)
		assert.Equal(t, "gandalf@DarkTower has joined channel gossip", FormatForDisplay(e))
	})

	t.Run("error", func(t *testing.T) {
		e := build(TypeError, `{"code":1003,"message":"no such mud"}`)
		assert.Equal(t, "Error 1003: no such mud", FormatForDisplay(e))
	})

	t.Run("unknown type falls back", func(t *testing.T) {
		e := build("telepathy", `{"thought":"?"}`)
		assert.Equal(t, "[telepathy message from gandalf@DarkTower]", FormatForDisplay(e))
	})
}
