package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	// PlaceholderContent marks the transient assistant entry shown while a
	// request is in flight. It never enters History.
	PlaceholderContent = "…"

	// FallbackReply stands in when a success response carries no reply text.
	FallbackReply = "Transmission received. No further data in the response."

	// ApologyReply is rendered (transcript only) when the request fails.
	ApologyReply = "Connection to the assistant core failed. Check the uplink and try again."

	// ErrorNoticeLabel heads the two-line failure notice.
	ErrorNoticeLabel = "Assistant uplink error"
)

// Orchestrator drives the request lifecycle for submitted commands and fans
// effects out to the transcript, notice board, history, and speech. One
// instance exists per session; collaborators are injected once.
type Orchestrator struct {
	status     *StatusMachine
	history    *History
	transcript TranscriptSink
	notices    NoticeBoard
	client     Client
	speaker    Speaker
	log        *logrus.Logger

	mu          sync.Mutex
	inFlight    bool
	voiceActive bool
	intentCopy  string
}

func NewOrchestrator(
	status *StatusMachine,
	history *History,
	transcript TranscriptSink,
	notices NoticeBoard,
	client Client,
	speaker Speaker,
	log *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		status:     status,
		history:    history,
		transcript: transcript,
		notices:    notices,
		client:     client,
		speaker:    speaker,
		log:        log,
	}
}

func (o *Orchestrator) Status() *StatusMachine { return o.status }

// InFlight reports whether a request is currently outstanding.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// SetVoiceActive records whether voice input is live. The flag only matters
// at request resolution, where status settles to listening or idle.
func (o *Orchestrator) SetVoiceActive(active bool) {
	o.mu.Lock()
	o.voiceActive = active
	o.mu.Unlock()
}

// Restore replays the persisted session into the transcript and notices.
// Startup notices (capability limitations surfaced once) ride along on the
// same board snapshot.
func (o *Orchestrator) Restore(startupNotices ...string) {
	o.history.Restore(o.transcript, o.notices, startupNotices...)
}

// Submit runs the full lifecycle for one command. It blocks for the network
// round-trip; callers that must stay responsive run it on a goroutine. It
// returns true when the command was accepted, false when the guard dropped
// it (blank input or a request already in flight). Exactly one request can
// be outstanding at a time; extra submissions are dropped, never queued.
func (o *Orchestrator) Submit(ctx context.Context, rawText string) bool {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return false
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		o.log.WithField("command", text).Debug("dropping submission while request in flight")
		return false
	}
	o.inFlight = true
	o.mu.Unlock()

	defer o.resolve()

	o.status.Set(StateThinking, CopyThinking)

	userMsg := Message{Role: RoleUser, Content: text}
	o.history.Append(userMsg)
	o.transcript.Append(userMsg)
	_ = o.history.Persist() // best-effort

	placeholder := o.transcript.Append(Message{Role: RoleAssistant, Content: PlaceholderContent})

	contextWindow := o.history.RecentWindow(ContextWindow)
	reply, err := o.client.Ask(ctx, text, contextWindow)
	if err != nil {
		o.transcript.Remove(placeholder)
		o.failCommand(text, err)
		return true
	}

	o.transcript.Remove(placeholder)
	o.commitReply(reply)
	return true
}

func (o *Orchestrator) commitReply(reply Reply) {
	text := strings.TrimSpace(reply.Text)
	if text == "" {
		text = FallbackReply
	}

	assistantMsg := Message{Role: RoleAssistant, Content: text}
	o.history.Append(assistantMsg)
	o.transcript.Append(assistantMsg)
	_ = o.history.Persist()

	if len(reply.Notices) > 0 {
		o.notices.Replace(reply.Notices)
	}
	if reply.Intent != "" {
		copy := "Intent: " + reply.Intent
		o.mu.Lock()
		o.intentCopy = copy
		o.mu.Unlock()
		o.status.SetCopy(copy)
	}
	if reply.Speak {
		o.speaker.Speak(text)
	}
}

// failCommand renders the apology without touching History: transient
// failures are not replayed into future request context.
func (o *Orchestrator) failCommand(command string, err error) {
	o.log.WithError(err).WithField("command", command).Error("assistant request failed")
	o.transcript.Append(Message{Role: RoleAssistant, Content: ApologyReply})
	o.notices.Replace([]string{ErrorNoticeLabel, err.Error()})
}

// resolve settles the status after a request. An intent copy set during the
// request survives resolution; it is reconciled on the next state transition.
func (o *Orchestrator) resolve() {
	o.mu.Lock()
	o.inFlight = false
	voice := o.voiceActive
	intent := o.intentCopy
	o.intentCopy = ""
	o.mu.Unlock()

	if voice {
		o.status.Set(StateListening, CopyListening)
	} else {
		o.status.Set(StateIdle, CopyIdle)
	}
	if intent != "" {
		o.status.SetCopy(intent)
	}
}
