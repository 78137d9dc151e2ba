package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"

	"orion-console/internal/conversation"
)

func TestDroppedSubmitRestoresInputText(t *testing.T) {
	m := Model{input: textinput.New()}

	updated, _ := m.Update(submitDoneMsg{accepted: false, text: "run diagnostics"})
	m = updated.(Model)

	if got := m.input.Value(); got != "run diagnostics" {
		t.Fatalf("expected dropped command back in the input, got %q", got)
	}
	if m.status == "" {
		t.Fatal("expected a status explaining the drop")
	}

	// An accepted submit leaves the (already cleared) input alone.
	m.input.SetValue("")
	updated, _ = m.Update(submitDoneMsg{accepted: true, text: "run diagnostics"})
	m = updated.(Model)
	if got := m.input.Value(); got != "" {
		t.Fatalf("expected input untouched after accepted submit, got %q", got)
	}
}

func TestDroppedSubmitKeepsNewerTyping(t *testing.T) {
	m := Model{input: textinput.New()}
	m.input.SetValue("next command")

	updated, _ := m.Update(submitDoneMsg{accepted: false, text: "old command"})
	m = updated.(Model)

	if got := m.input.Value(); got != "next command" {
		t.Fatalf("expected in-progress typing preserved, got %q", got)
	}
}

func TestFeedAllocatesMonotonicEntryIDs(t *testing.T) {
	feed := NewFeed()

	first := feed.Append(conversation.Message{Role: conversation.RoleUser, Content: "one"})
	second := feed.Append(conversation.Message{Role: conversation.RoleAssistant, Content: "two"})

	if first == second {
		t.Fatalf("expected distinct entry IDs, got %d twice", first)
	}
	if second <= first {
		t.Fatalf("expected increasing IDs, got %d then %d", first, second)
	}

	added, ok := feed.Next().(entryAddedMsg)
	if !ok {
		t.Fatalf("expected entryAddedMsg, got %T", added)
	}
	if added.id != first || added.message.Content != "one" {
		t.Fatalf("unexpected first event: %+v", added)
	}
}

func TestFeedRelaysRemovalAndNotices(t *testing.T) {
	feed := NewFeed()

	id := feed.Append(conversation.Message{Role: conversation.RoleAssistant, Content: conversation.PlaceholderContent})
	feed.Remove(id)
	feed.Replace([]string{"alpha", "beta"})

	feed.Next() // entryAddedMsg
	removed, ok := feed.Next().(entryRemovedMsg)
	if !ok || removed.id != id {
		t.Fatalf("expected removal of %d, got %+v", id, removed)
	}
	notices, ok := feed.Next().(noticesMsg)
	if !ok || len(notices.notices) != 2 {
		t.Fatalf("expected two notices, got %+v", notices)
	}
}

func TestRemoveEntryDropsOnlyMatchingID(t *testing.T) {
	m := Model{entries: []transcriptEntry{
		{id: 1, msg: conversation.Message{Role: conversation.RoleUser, Content: "hello"}},
		{id: 2, msg: conversation.Message{Role: conversation.RoleAssistant, Content: conversation.PlaceholderContent}},
		{id: 3, msg: conversation.Message{Role: conversation.RoleAssistant, Content: "reply"}},
	}}

	m.removeEntry(2)

	if len(m.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.entries))
	}
	for _, e := range m.entries {
		if e.id == 2 {
			t.Fatalf("entry 2 should have been removed")
		}
	}
}

func TestExportableMessagesSkipsPlaceholder(t *testing.T) {
	m := Model{entries: []transcriptEntry{
		{id: 1, msg: conversation.Message{Role: conversation.RoleUser, Content: "hello"}},
		{id: 2, msg: conversation.Message{Role: conversation.RoleAssistant, Content: conversation.PlaceholderContent}},
	}}

	msgs := m.exportableMessages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 exportable message, got %d", len(msgs))
	}
	if msgs[0].Content != "hello" {
		t.Fatalf("unexpected message %+v", msgs[0])
	}
}

func TestLastReplySkipsPlaceholderAndUserEntries(t *testing.T) {
	m := Model{entries: []transcriptEntry{
		{id: 1, msg: conversation.Message{Role: conversation.RoleAssistant, Content: "first reply"}},
		{id: 2, msg: conversation.Message{Role: conversation.RoleUser, Content: "next question"}},
		{id: 3, msg: conversation.Message{Role: conversation.RoleAssistant, Content: conversation.PlaceholderContent}},
	}}

	text, ok := m.lastReply()
	if !ok {
		t.Fatalf("expected a reply")
	}
	if text != "first reply" {
		t.Fatalf("got %q, want first reply", text)
	}

	empty := Model{}
	if _, ok := empty.lastReply(); ok {
		t.Fatalf("expected no reply on empty transcript")
	}
}

func TestTranscriptMarkdownLabelsSpeakers(t *testing.T) {
	m := Model{entries: []transcriptEntry{
		{id: 1, msg: conversation.Message{Role: conversation.RoleUser, Content: "status report"}},
		{id: 2, msg: conversation.Message{Role: conversation.RoleAssistant, Content: "All nominal."}},
	}}

	md := m.transcriptMarkdown()
	if !strings.Contains(md, "**You:**") {
		t.Fatalf("expected user label, got:\n%s", md)
	}
	if !strings.Contains(md, "**"+conversation.AssistantName+":**") {
		t.Fatalf("expected assistant label, got:\n%s", md)
	}
}

func TestTranscriptMarkdownEmptyChannel(t *testing.T) {
	m := Model{}
	if md := m.transcriptMarkdown(); !strings.Contains(md, "Awaiting first transmission") {
		t.Fatalf("expected empty-channel placeholder, got:\n%s", md)
	}
}

func TestPaneWidthsClamp(t *testing.T) {
	m := Model{width: 200}
	left, right := m.paneWidths()
	if right != 44 {
		t.Fatalf("expected notices pane capped at 44, got %d", right)
	}
	if left != 200-44-1 {
		t.Fatalf("unexpected transcript width %d", left)
	}

	m.width = 60
	_, right = m.paneWidths()
	if right != 24 {
		t.Fatalf("expected notices pane floor of 24, got %d", right)
	}
}
