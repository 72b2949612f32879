// Package stream decodes the assistant's newline-delimited JSON transcript.
//
// Each line is a single JSON value. Object lines with a content_block_delta
// event yield text fragments; top-level error results are inspected for
// rate-limit and authentication terminal signals. Everything else is
// silently discarded. The parser keeps no state between lines.
package stream

import "time"

// AuthKind distinguishes the two authentication terminal signals.
type AuthKind string

const (
	// AuthTokenExpired indicates the assistant's OAuth token expired.
	AuthTokenExpired AuthKind = "token_expired"
	// AuthFailed indicates the assistant failed to authenticate.
	AuthFailed AuthKind = "authentication_failed"
)

// Event is a parsed transcript event. The concrete types are TextFragment,
// SessionInit, RateLimit, and AuthError.
type Event interface {
	// When returns the wall-clock decode time. Informational only.
	When() time.Time
}

// SessionInit carries the assistant's session handle, announced at the
// start of a run and required to resume the conversation later.
type SessionInit struct {
	SessionID string
	Time      time.Time
}

// When implements Event.
func (s SessionInit) When() time.Time { return s.Time }

// TextFragment is a piece of assistant output text.
type TextFragment struct {
	Text string
	Time time.Time
}

// When implements Event.
func (f TextFragment) When() time.Time { return f.Time }

// RateLimit is a terminal signal: the assistant reported a usage limit.
type RateLimit struct {
	// ResetLabel is the hour label from the transcript, e.g. "8pm".
	ResetLabel string
	// WaitMinutes is the wall-clock wait until the reported reset hour.
	WaitMinutes int
	Time        time.Time
}

// When implements Event.
func (r RateLimit) When() time.Time { return r.Time }

// Message returns the user-facing failure message for the signal.
func (r RateLimit) Message() string {
	return rateLimitMessage(r.WaitMinutes, r.ResetLabel)
}

// AuthError is a terminal signal: the assistant could not authenticate.
type AuthError struct {
	Kind AuthKind
	Time time.Time
}

// When implements Event.
func (a AuthError) When() time.Time { return a.Time }

// Message returns the user-facing failure message for the signal.
func (a AuthError) Message() string {
	if a.Kind == AuthTokenExpired {
		return "OAuth token has expired; re-authenticate and retry"
	}
	return "authentication failed; check credentials"
}
