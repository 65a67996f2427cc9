package contracts

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// maxMessageLength caps sanitized message text.
const maxMessageLength = 4096

var (
	mudNameRe   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	unprintable = regexp.MustCompile("[^\x20-\x7E\n\t]")
)

// IsValidMudName reports whether name is a valid mesh MUD identifier:
// 1-64 characters drawn from letters, digits, underscore, and dash.
func IsValidMudName(name string) bool {
	return mudNameRe.MatchString(name)
}

// IsExpired reports whether the envelope has outlived its TTL. An
// envelope whose timestamp cannot be parsed is treated as expired.
func IsExpired(e *Envelope) bool {
	return isExpiredAt(e, time.Now().UTC())
}

func isExpiredAt(e *Envelope, now time.Time) bool {
	sent, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return true
	}
	return now.Sub(sent) > time.Duration(e.Metadata.TTL)*time.Second
}

// SanitizeMessage strips non-printable characters from message text
// and truncates it to the protocol maximum.
func SanitizeMessage(message string) string {
	sanitized := unprintable.ReplaceAllString(message, "")
	if len(sanitized) > maxMessageLength {
		sanitized = sanitized[:maxMessageLength]
	}
	return strings.TrimSpace(sanitized)
}

// FormatForDisplay renders an envelope as a line of MUD output.
// Unknown or malformed payloads fall back to a generic rendering.
func FormatForDisplay(e *Envelope) string {
	switch e.Type {
	case TypeTell:
		var p TellPayload
		if e.DecodePayload(&p) == nil {
			return fmt.Sprintf("%s tells you: %s", e.From, p.Message)
		}
	case TypeChannel:
		var p ChannelPayload
		if e.DecodePayload(&p) == nil {
			switch p.Action {
			case ChannelActionJoin:
				return fmt.Sprintf("%s has joined channel %s", e.From, p.Channel)
			case ChannelActionLeave:
				return fmt.Sprintf("%s has left channel %s", e.From, p.Channel)
			default:
				return fmt.Sprintf("[%s] %s: %s", p.Channel, e.From, p.Message)
			}
		}
	case TypeEmote, TypeEmoteTo:
		var p EmotePayload
		if e.DecodePayload(&p) == nil {
			return fmt.Sprintf("%s %s", e.From, p.Action)
		}
	case TypeError:
		var p ErrorPayload
		if e.DecodePayload(&p) == nil {
			return fmt.Sprintf("Error %d: %s", p.Code, p.Message)
		}
	}
	return fmt.Sprintf("[%s message from %s]", e.Type, e.From)
}
