package stream

import (
	"encoding/json"
	"strings"
	"time"
)

// transcriptLine is the tolerant shape decoded from each transcript line.
// Unknown fields are ignored; lines that do not decode to an object are
// discarded entirely.
type transcriptLine struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id"`
	IsError   bool   `json:"is_error"`
	Result    string `json:"result"`
	Event     struct {
		Type  string `json:"type"`
		Delta struct {
			Text string `json:"text"`
		} `json:"delta"`
	} `json:"event"`
}

// ParseLine decodes one transcript line. It returns the parsed event and
// true, or nil and false when the line carries nothing of interest. The
// text-fragment and terminal-signal shapes are disjoint, so a line yields
// at most one event.
func ParseLine(line string, now time.Time) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}

	var record transcriptLine
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		// Non-object line (array, scalar, malformed). Discard.
		return nil, false
	}

	if record.Event.Type == "content_block_delta" && record.Event.Delta.Text != "" {
		return TextFragment{Text: record.Event.Delta.Text, Time: now}, true
	}

	if record.Type == "system" && record.Subtype == "init" && record.SessionID != "" {
		return SessionInit{SessionID: record.SessionID, Time: now}, true
	}

	if record.Type == "result" && record.IsError {
		if label, ok := matchRateLimit(record.Result); ok {
			return RateLimit{
				ResetLabel:  label,
				WaitMinutes: waitMinutes(label, now),
				Time:        now,
			}, true
		}
		if kind, ok := matchAuthError(record.Result); ok {
			return AuthError{Kind: kind, Time: now}, true
		}
	}

	return nil, false
}

// ExtractTextFromStream concatenates the text fragments of a line sequence
// in input order.
func ExtractTextFromStream(lines []string) string {
	var builder strings.Builder
	now := time.Now()
	for _, line := range lines {
		event, ok := ParseLine(line, now)
		if !ok {
			continue
		}
		if fragment, ok := event.(TextFragment); ok {
			builder.WriteString(fragment.Text)
		}
	}
	return builder.String()
}

// matchAuthError classifies an error result as an authentication failure.
func matchAuthError(result string) (AuthKind, bool) {
	if strings.Contains(result, "OAuth token has expired") {
		return AuthTokenExpired, true
	}
	if strings.Contains(result, "Failed to authenticate") || strings.Contains(result, "authentication_error") {
		return AuthFailed, true
	}
	return "", false
}
