package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"orion-console/internal/conversation"
)

func testAssistant(uplink Uplink) *Assistant {
	log := logrus.New()
	log.SetOutput(io.Discard)
	a := New(uplink, log)
	a.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	a.pick = func(int) int { return 0 }
	return a
}

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"run a system diagnostic", "diagnostics"},
		{"what time is it", "time"},
		{"calculate 2 + 2", "calculation"},
		{"summarize our conversation", "summary"},
		{"give me a plan", "plan"},
		{"motivate me", "motivation"},
		{"what's the weather", "weather"},
		{"remind me later", "reminder"},
		{"hello there", "general"},
	}
	for _, tc := range cases {
		if got := detectIntent(tc.message); got != tc.want {
			t.Fatalf("detectIntent(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestHandleDiagnostics(t *testing.T) {
	a := testAssistant(nil)
	res := a.Handle(context.Background(), "run diagnostics", nil)

	if res.Intent != "diagnostics" {
		t.Fatalf("intent = %q", res.Intent)
	}
	if !strings.Contains(res.Reply, "nominal") {
		t.Fatalf("unexpected reply: %q", res.Reply)
	}
	if len(res.Actions) != 4 {
		t.Fatalf("expected 4 action lines, got %d", len(res.Actions))
	}
	if !res.Speak {
		t.Fatal("diagnostics should be narrated")
	}
}

func TestHandleCalculation(t *testing.T) {
	a := testAssistant(nil)

	res := a.Handle(context.Background(), "calculate (42 * 7) / 3", nil)
	if res.Intent != "calculation" {
		t.Fatalf("intent = %q", res.Intent)
	}
	if !strings.Contains(res.Reply, "98.0000") {
		t.Fatalf("unexpected reply: %q", res.Reply)
	}

	res = a.Handle(context.Background(), "calculate", nil)
	if !strings.Contains(res.Reply, "Provide the equation") {
		t.Fatalf("empty expression should prompt, got %q", res.Reply)
	}

	res = a.Handle(context.Background(), "calculate launch(codes)", nil)
	if !strings.Contains(res.Reply, "safety guard") {
		t.Fatalf("bad expression should hit the guard, got %q", res.Reply)
	}
}

func TestHandleSummary(t *testing.T) {
	a := testAssistant(nil)

	res := a.Handle(context.Background(), "summarize this", nil)
	if !strings.Contains(res.Reply, "no conversation history") {
		t.Fatalf("unexpected empty-history reply: %q", res.Reply)
	}

	history := []conversation.Message{
		{Role: conversation.RoleUser, Content: "first question"},
		{Role: conversation.RoleAssistant, Content: "first answer"},
	}
	res = a.Handle(context.Background(), "summarize this", history)
	if !strings.Contains(res.Reply, "You: first question") {
		t.Fatalf("summary should label user turns: %q", res.Reply)
	}
	if !strings.Contains(res.Reply, conversation.AssistantName+": first answer") {
		t.Fatalf("summary should label assistant turns: %q", res.Reply)
	}
	if res.Speak {
		t.Fatal("summaries are not narrated")
	}
}

func TestHandleTimeAndPlanAndMotivation(t *testing.T) {
	a := testAssistant(nil)

	res := a.Handle(context.Background(), "what time is it", nil)
	if res.Intent != "time" || !strings.Contains(res.Reply, "UTC") {
		t.Fatalf("time handler: %+v", res)
	}

	res = a.Handle(context.Background(), "draft a plan", nil)
	if res.Intent != "plan" || !strings.Contains(res.Reply, "four-week sprint") {
		t.Fatalf("plan handler: %+v", res)
	}

	res = a.Handle(context.Background(), "motivate me", nil)
	if res.Intent != "motivation" || !strings.HasPrefix(res.Reply, "Motivation delivered: ") {
		t.Fatalf("motivation handler: %+v", res)
	}
}

type stubUplink struct {
	reply string
	err   error
	calls int
}

func (s *stubUplink) Complete(context.Context, string, []conversation.Message, string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestGeneralCommandUsesUplink(t *testing.T) {
	uplink := &stubUplink{reply: "Understood. Mapping an approach now."}
	a := testAssistant(uplink)

	res := a.Handle(context.Background(), "help me refactor the hangar inventory", nil)
	if uplink.calls != 1 {
		t.Fatalf("expected one uplink call, got %d", uplink.calls)
	}
	if res.Reply != "Understood. Mapping an approach now." {
		t.Fatalf("unexpected reply: %q", res.Reply)
	}
	if res.Intent != "general" {
		t.Fatalf("intent = %q", res.Intent)
	}
}

func TestUplinkFailureDegradesToFiller(t *testing.T) {
	uplink := &stubUplink{err: errors.New("dial timeout")}
	a := testAssistant(uplink)

	res := a.Handle(context.Background(), "anything unusual", nil)
	if !strings.Contains(res.Reply, "interference") {
		t.Fatalf("unexpected degraded reply: %q", res.Reply)
	}
	if len(res.Actions) != 1 || !strings.Contains(res.Actions[0], "dial timeout") {
		t.Fatalf("failure detail missing from actions: %v", res.Actions)
	}
}

func TestOfflineFallbacks(t *testing.T) {
	a := testAssistant(nil)

	res := a.Handle(context.Background(), "what's the weather like", nil)
	if res.Intent != "weather" || !strings.Contains(res.Reply, "Weather intel") {
		t.Fatalf("weather fallback: %+v", res)
	}

	res = a.Handle(context.Background(), "remind me to refuel", nil)
	if res.Intent != "reminder" {
		t.Fatalf("reminder fallback: %+v", res)
	}

	res = a.Handle(context.Background(), "hello there", nil)
	if res.Reply != offlineFillers[0] {
		t.Fatalf("filler fallback: %q", res.Reply)
	}
}
