package conversation

import "sync"

// State is the interaction state shown to the user. Values outside the three
// canonical states are accepted for forward compatibility but nothing in this
// repo sets them.
type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
	StateThinking  State = "thinking"
)

// Canonical status copy.
const (
	CopyIdle      = "Systems Idle"
	CopyListening = "Listening"
	CopyThinking  = "Processing"
)

// Status is the single live state/copy pair.
type Status struct {
	State State
	Copy  string
}

// StatusMachine holds the one live Status. Set replaces it atomically and
// notifies the listener; last write wins.
type StatusMachine struct {
	mu       sync.Mutex
	current  Status
	onChange func(Status)
}

// NewStatusMachine starts idle. onChange may be nil.
func NewStatusMachine(onChange func(Status)) *StatusMachine {
	return &StatusMachine{
		current:  Status{State: StateIdle, Copy: CopyIdle},
		onChange: onChange,
	}
}

func (s *StatusMachine) Set(state State, copy string) {
	s.mu.Lock()
	s.current = Status{State: state, Copy: copy}
	cur, notify := s.current, s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(cur)
	}
}

// SetCopy overrides the visible copy without touching the state value. Used
// for intent labels; the override lasts until the next Set.
func (s *StatusMachine) SetCopy(copy string) {
	s.mu.Lock()
	s.current.Copy = copy
	cur, notify := s.current, s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(cur)
	}
}

func (s *StatusMachine) Current() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
