package voice

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Recognizer is a speech-to-text engine. One capture session runs at a time;
// the engine reports lifecycle and results on Events.
type Recognizer interface {
	Start() error
	Stop()
	Events() <-chan Event
}

// CommandRecognizer shells out to a user-configured capture command: the
// command records one utterance, prints the transcript to stdout, and exits.
// Hosts without such a command have no recognition capability.
type CommandRecognizer struct {
	path string
	args []string

	mu      sync.Mutex
	current *exec.Cmd
	events  chan Event
}

// NewCommandRecognizer probes the configured command line. An empty command
// or one that cannot be resolved on PATH yields ErrUnsupported.
func NewCommandRecognizer(command string, lookPath func(string) (string, error)) (*CommandRecognizer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, ErrUnsupported
	}
	path, err := lookPath(fields[0])
	if err != nil {
		return nil, ErrUnsupported
	}
	return &CommandRecognizer{
		path:   path,
		args:   fields[1:],
		events: make(chan Event, 8),
	}, nil
}

func (r *CommandRecognizer) Events() <-chan Event {
	return r.events
}

// Start launches one capture session. The session ends on its own when the
// command exits; Stop ends it early.
func (r *CommandRecognizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		return fmt.Errorf("capture session already running")
	}

	cmd := exec.Command(r.path, r.args...)
	var out strings.Builder
	cmd.Stdout = &out

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start capture command: %w", err)
	}
	r.current = cmd

	go func() {
		r.events <- Event{Kind: EventStarted}
		err := cmd.Wait()

		// Stop may have already detached this session and a newer one may
		// be running; only clear our own registration.
		r.mu.Lock()
		if r.current == cmd {
			r.current = nil
		}
		r.mu.Unlock()

		if err != nil {
			r.events <- Event{Kind: EventError, Err: err}
		} else if text := strings.TrimSpace(out.String()); text != "" {
			r.events <- Event{Kind: EventResult, Text: text}
		}
		r.events <- Event{Kind: EventEnded}
	}()
	return nil
}

// Stop kills the running capture session, if any. The session is detached
// synchronously so a new one can start before the old process is reaped;
// the waiter goroutine still emits the Ended event.
func (r *CommandRecognizer) Stop() {
	r.mu.Lock()
	cmd := r.current
	r.current = nil
	r.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
