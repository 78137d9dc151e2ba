package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"orion-console/internal/conversation"
)

// Feed bridges the conversation collaborators into bubbletea messages. The
// orchestrator and voice controllers run on their own goroutines, so every
// mutation arrives in Update through the event channel instead of touching
// the model directly.
type Feed struct {
	events chan tea.Msg

	mu     sync.Mutex
	nextID conversation.EntryID
}

func NewFeed() *Feed {
	return &Feed{events: make(chan tea.Msg, 256)}
}

type entryAddedMsg struct {
	id      conversation.EntryID
	message conversation.Message
}

type entryRemovedMsg struct {
	id conversation.EntryID
}

type noticesMsg struct {
	notices []string
}

type statusMsg struct {
	state conversation.State
	text  string
}

// Append implements conversation.TranscriptSink.
func (f *Feed) Append(msg conversation.Message) conversation.EntryID {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.mu.Unlock()

	f.events <- entryAddedMsg{id: id, message: msg}
	return id
}

// Remove implements conversation.TranscriptSink.
func (f *Feed) Remove(id conversation.EntryID) {
	f.events <- entryRemovedMsg{id: id}
}

// Replace implements conversation.NoticeBoard.
func (f *Feed) Replace(notices []string) {
	f.events <- noticesMsg{notices: append([]string(nil), notices...)}
}

// RelayStatus is wired as the StatusMachine change callback.
func (f *Feed) RelayStatus(state conversation.State, text string) {
	f.events <- statusMsg{state: state, text: text}
}

// Next blocks until the next event; Update re-arms it after each message.
func (f *Feed) Next() tea.Msg {
	return <-f.events
}
