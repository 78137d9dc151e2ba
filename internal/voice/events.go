// Package voice wraps host speech capabilities behind probe-once engines and
// the two controllers that coordinate them with the conversation.
package voice

import "errors"

// ErrUnsupported reports that the host offers no usable speech capability.
var ErrUnsupported = errors.New("speech capability not available on this host")

type EventKind int

const (
	// EventStarted confirms the engine opened a capture session.
	EventStarted EventKind = iota
	// EventResult carries one recognized transcript.
	EventResult
	// EventEnded marks the end of a capture session, whether it produced a
	// result or not. Engines end sessions on their own after one utterance.
	EventEnded
	// EventError reports a mid-session engine failure. An EventEnded follows.
	EventError
)

// Event is one tagged engine notification. Recognizer events arrive on a
// channel so the input controller is a plain state transition over
// (state, event).
type Event struct {
	Kind EventKind
	Text string
	Err  error
}
