package voice

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"orion-console/internal/conversation"
)

type inputState int

const (
	stateUninitialized inputState = iota
	stateReady
	stateListening
	stateUnsupported
)

// Coordinator is the slice of the orchestrator the input controller needs:
// whether a request is outstanding (status resolution is deferred to the
// orchestrator while one is) and the voice-active flag it resolves against.
type Coordinator interface {
	InFlight() bool
	SetVoiceActive(active bool)
}

// InputController toggles the recognition engine and routes transcripts into
// command submission. The engine is created lazily on the first toggle, at
// most once; an unsupported host pins the controller in a terminal disabled
// state.
type InputController struct {
	newEngine func() (Recognizer, error)
	status    *conversation.StatusMachine
	coord     Coordinator
	submit    func(text string)
	log       *logrus.Logger

	mu     sync.Mutex
	state  inputState
	reason string
	engine Recognizer
}

func NewInputController(
	newEngine func() (Recognizer, error),
	status *conversation.StatusMachine,
	coord Coordinator,
	submit func(text string),
	log *logrus.Logger,
) *InputController {
	return &InputController{
		newEngine: newEngine,
		status:    status,
		coord:     coord,
		submit:    submit,
		log:       log,
	}
}

// Disabled reports the terminal unsupported state and its reason.
func (c *InputController) Disabled() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateUnsupported, c.reason
}

func (c *InputController) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateListening
}

// Toggle starts listening when ready and stops when listening. The first
// toggle probes the host capability; when the probe fails the controller
// disables itself permanently and later toggles are no-ops.
func (c *InputController) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateUnsupported:
		return

	case stateUninitialized:
		engine, err := c.newEngine()
		if err != nil {
			c.state = stateUnsupported
			c.reason = err.Error()
			c.log.WithError(err).Warn("voice input unavailable")
			return
		}
		c.engine = engine
		c.state = stateReady
		go c.consumeEvents(engine.Events())
		c.startLocked()

	case stateReady:
		c.startLocked()

	case stateListening:
		// Always stop, never restart, regardless of transcript timing.
		c.state = stateReady
		c.coord.SetVoiceActive(false)
		c.engine.Stop()
	}
}

// startLocked opens a capture session and reports the listening status
// optimistically; the engine's own start confirmation is not awaited.
func (c *InputController) startLocked() {
	if err := c.engine.Start(); err != nil {
		c.log.WithError(err).Error("capture session failed to start")
		return
	}
	c.state = stateListening
	c.coord.SetVoiceActive(true)
	c.status.Set(conversation.StateListening, conversation.CopyListening)
}

func (c *InputController) consumeEvents(events <-chan Event) {
	for ev := range events {
		c.handleEvent(ev)
	}
}

func (c *InputController) handleEvent(ev Event) {
	switch ev.Kind {
	case EventStarted:
		// Listening status was already reported on toggle.

	case EventResult:
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return
		}
		c.log.WithField("transcript", text).Info("voice transcript received")
		// Submission blocks for the round-trip; keep the event loop free.
		go c.submit(text)

	case EventError:
		c.log.WithError(ev.Err).Warn("recognition engine error")
		c.sessionEnded()

	case EventEnded:
		c.sessionEnded()
	}
}

// sessionEnded reconciles controller state with the engine's true stopped
// state. Status is only reset here when no request is in flight; otherwise
// the orchestrator resolves it on completion.
func (c *InputController) sessionEnded() {
	c.mu.Lock()
	if c.state == stateListening {
		c.state = stateReady
	}
	c.mu.Unlock()

	c.coord.SetVoiceActive(false)
	if !c.coord.InFlight() {
		c.status.Set(conversation.StateIdle, conversation.CopyIdle)
	}
}
