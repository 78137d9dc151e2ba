package conversation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// historyKey is the fixed key the serialized window lives under.
	historyKey = "conversation_history"

	// PersistWindow is how many trailing entries survive across sessions.
	PersistWindow = 20
	// ContextWindow is how many trailing entries accompany each request.
	ContextWindow = 12
)

// History is the bounded, append-only message log. It is single-writer (the
// orchestrator) and is the durable source of truth for request context and
// session restoration; the transcript is only a projection of it.
type History struct {
	kv      KVStore
	log     *logrus.Logger
	entries []Message
}

func NewHistory(kv KVStore, log *logrus.Logger) *History {
	return &History{kv: kv, log: log}
}

func (h *History) Append(msg Message) {
	h.entries = append(h.entries, msg)
}

func (h *History) Len() int {
	return len(h.entries)
}

// RecentWindow returns the last n entries in original order, or all of them
// when fewer exist. The returned slice is a copy; History entries are never
// mutated after append.
func (h *History) RecentWindow(n int) []Message {
	if n <= 0 {
		return nil
	}
	start := len(h.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// Persist writes the trailing PersistWindow entries under the fixed key.
// Persistence is best-effort: failures are reported but callers are expected
// to discard them.
func (h *History) Persist() error {
	window := h.RecentWindow(PersistWindow)
	blob, err := json.Marshal(window)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := h.kv.Set(historyKey, string(blob)); err != nil {
		h.log.WithError(err).Warn("history persist failed")
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

// Restore loads the persisted window, replays it into the transcript in
// original order, and posts a restoration summary to the notice board. A
// missing, malformed, or non-message-shaped payload resets to an empty
// history without replay or notice. Extra notices (one-time startup
// limitations) are appended to whatever snapshot gets posted; with nothing
// restored and no extras the board is left untouched.
func (h *History) Restore(transcript TranscriptSink, notices NoticeBoard, extra ...string) {
	h.entries = nil

	restored := h.readPersisted()
	if len(restored) == 0 {
		if len(extra) > 0 {
			notices.Replace(extra)
		}
		return
	}

	h.entries = restored
	for _, m := range h.entries {
		transcript.Append(m)
	}
	notices.Replace(append(h.restoreNotices(), extra...))
}

func (h *History) readPersisted() []Message {
	blob, err := h.kv.Get(historyKey)
	if err != nil {
		h.log.WithError(err).Warn("history restore read failed")
		return nil
	}
	if strings.TrimSpace(blob) == "" {
		return nil
	}

	var restored []Message
	if err := json.Unmarshal([]byte(blob), &restored); err != nil {
		h.log.WithError(err).Warn("discarding malformed history payload")
		return nil
	}
	if len(restored) > PersistWindow {
		h.log.WithField("count", len(restored)).Warn("discarding oversized history payload")
		return nil
	}
	for _, m := range restored {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			h.log.Warn("discarding history payload with unknown role")
			return nil
		}
	}
	return restored
}

func (h *History) restoreNotices() []string {
	noun := "transmissions"
	if len(h.entries) == 1 {
		noun = "transmission"
	}
	out := []string{fmt.Sprintf("%d %s restored from the previous session", len(h.entries), noun)}
	for _, m := range h.RecentWindow(3) {
		out = append(out, m.SpeakerLabel()+": "+shortenContent(m.Content, 80))
	}
	return out
}

func shortenContent(s string, n int) string {
	s = strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
