package conversation

// AssistantName is the persona label used in transcript headers, restore
// notices, and summary snippets.
const AssistantName = "Orion"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversational turn. It is immutable once created: History
// owns appended messages and never rewrites them, the transcript only
// references them for rendering.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SpeakerLabel returns the display prefix for a message ("You" or the
// assistant persona name).
func (m Message) SpeakerLabel() string {
	if m.Role == RoleUser {
		return "You"
	}
	return AssistantName
}
