package conversation

import "context"

// EntryID identifies a transcript entry so ephemeral entries (the in-flight
// placeholder) can be removed again. History entries get handles too but the
// orchestrator never removes those.
type EntryID int64

// TranscriptSink appends rendered messages to the visible conversation and
// keeps the newest entry in view. Entries appended here may be ephemeral;
// History is the durable record.
type TranscriptSink interface {
	Append(msg Message) EntryID
	Remove(id EntryID)
}

// NoticeBoard replaces the auxiliary notice strings shown beside the
// transcript. The full set is computed per event; there is no append.
type NoticeBoard interface {
	Replace(notices []string)
}

// Speaker narrates a reply. Implementations are fire-and-forget; playback
// failures stay inside the voice layer.
type Speaker interface {
	Speak(text string)
}

// Reply is the assistant service's answer to one command.
type Reply struct {
	Text    string
	Notices []string
	Intent  string
	Speak   bool
}

// Client sends a command plus recent context to the remote assistant
// service.
type Client interface {
	Ask(ctx context.Context, message string, history []Message) (Reply, error)
}

// KVStore is the durable key-value capability backing History persistence.
// Writes are best-effort: the orchestrator discards the returned error on
// purpose (spec'd fire-and-forget persistence), but the capability still
// reports it so the choice is visible at the call site.
type KVStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}
