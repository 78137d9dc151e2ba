// Package assistant implements the command handlers behind the assistant
// wire contract: intent detection, the built-in tactical handlers, and an
// optional model uplink for everything else.
package assistant

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"orion-console/internal/conversation"
)

// identityPrompt frames uplink completions.
const identityPrompt = "You are Orion, a tactical operations assistant. " +
	"Respond with clarity, calm confidence, and concise detail. " +
	"Offer actionable next steps whenever possible."

// historyContext is how many trailing turns summaries and uplink calls see.
const historyContext = 8

// Result is one handled command: the reply, auxiliary action lines, the
// classified intent, and whether the client should narrate the reply.
type Result struct {
	Reply   string
	Actions []string
	Intent  string
	Speak   bool
}

// Uplink generates a reply for commands no built-in handler claims.
type Uplink interface {
	Complete(ctx context.Context, system string, history []conversation.Message, message string) (string, error)
}

type Assistant struct {
	uplink Uplink
	log    *logrus.Logger
	now    func() time.Time
	pick   func(n int) int
}

// New creates an Assistant. uplink may be nil; unhandled commands then get
// offline filler replies.
func New(uplink Uplink, log *logrus.Logger) *Assistant {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Assistant{
		uplink: uplink,
		log:    log,
		now:    time.Now,
		pick:   rng.Intn,
	}
}

var intentAliases = []struct {
	intent  string
	aliases []string
}{
	{"diagnostics", []string{"diagnostic", "diagnostics", "system status"}},
	{"time", []string{"time", "timezone", "date"}},
	{"plan", []string{"plan", "schedule", "roadmap"}},
	{"motivation", []string{"motivate", "motivation", "quote"}},
	{"calculation", []string{"calculate", "compute", "math"}},
	{"summary", []string{"summarize", "summary", "recap"}},
}

func detectIntent(message string) string {
	lowered := strings.ToLower(message)
	for _, entry := range intentAliases {
		for _, alias := range entry.aliases {
			if strings.Contains(lowered, alias) {
				return entry.intent
			}
		}
	}
	if strings.Contains(lowered, "weather") {
		return "weather"
	}
	if strings.Contains(lowered, "remind") {
		return "reminder"
	}
	return "general"
}

// Handle classifies the command and answers it with the first handler that
// claims it, falling back to the model uplink or the offline fillers.
func (a *Assistant) Handle(ctx context.Context, message string, history []conversation.Message) Result {
	intent := detectIntent(message)

	handlers := []func(string, []conversation.Message, string) *Result{
		a.handleDiagnostics,
		a.handleTime,
		a.handleCalculation,
		a.handleMotivation,
		a.handleSummary,
		a.handlePlan,
	}
	for _, h := range handlers {
		if res := h(message, history, intent); res != nil {
			if res.Intent == "" {
				res.Intent = intent
			}
			return *res
		}
	}
	return a.callModel(ctx, message, history, intent)
}

func (a *Assistant) handleDiagnostics(_ string, _ []conversation.Message, intent string) *Result {
	if intent != "diagnostics" {
		return nil
	}
	now := a.now().UTC()
	return &Result{
		Reply: "System diagnostic complete. All monitored subsystems report nominal performance. " +
			"No anomalies detected within the last cycle. Ready for further directives.",
		Actions: []string{
			fmt.Sprintf("Timestamp: %s UTC", now.Format("2006-01-02 15:04:05")),
			fmt.Sprintf("Runtime: %s", runtime.Version()),
			fmt.Sprintf("Platform: %s/%s", runtime.GOOS, runtime.GOARCH),
			"Self-check: Core systems nominal. Latency < 200ms.",
		},
		Intent: "diagnostics",
		Speak:  true,
	}
}

func (a *Assistant) handleTime(_ string, _ []conversation.Message, intent string) *Result {
	if intent != "time" {
		return nil
	}
	local := a.now()
	utc := local.UTC()
	return &Result{
		Reply: fmt.Sprintf(
			"It's currently %s local time (%s UTC) on %s.",
			local.Format("03:04 PM"),
			utc.Format("15:04"),
			utc.Format("Monday, January 02, 2006"),
		),
		Actions: []string{
			"Local time check: " + local.Format("03:04:05 PM"),
			"UTC time check: " + utc.Format("15:04:05"),
			"Reminder: Synchronize mission-critical events with UTC baseline.",
		},
		Intent: "time",
		Speak:  true,
	}
}

func (a *Assistant) handleCalculation(message string, _ []conversation.Message, intent string) *Result {
	lowered := strings.ToLower(message)
	if intent != "calculation" {
		if !strings.Contains(lowered, "calculate") && !strings.Contains(lowered, "compute") && !strings.Contains(lowered, "evaluate") {
			return nil
		}
	}
	expression := lowered
	for _, kw := range []string{"calculate", "compute", "evaluate", "math"} {
		expression = strings.ReplaceAll(expression, kw, "")
	}
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return &Result{
			Reply:   "Provide the equation you'd like me to solve. Example: 'Calculate (42 * 7) / 3.'",
			Actions: []string{"Awaiting target expression.", "Accepts + - * / ^, sin/cos/tan, sqrt."},
			Intent:  "calculation",
			Speak:   true,
		}
	}

	value, err := Evaluate(expression)
	if err != nil {
		return &Result{
			Reply:   "That expression triggered a safety guard. Confirm the syntax and try again.",
			Actions: []string{"Parser exception: " + err.Error()},
			Intent:  "calculation",
			Speak:   true,
		}
	}
	return &Result{
		Reply: fmt.Sprintf("Computation complete. The result is %.4f.", value),
		Actions: []string{
			"Input expression: " + expression,
			fmt.Sprintf("Evaluated result: %.4f", value),
			"Precision limited to four decimal places.",
		},
		Intent: "calculation",
		Speak:  true,
	}
}

var motivationQuotes = []string{
	"The future is built by those who show up fully prepared. You already did the hardest part by starting.",
	"Every system has latency. Progress happens when you keep the pipeline moving anyway.",
	"Precision and consistency beat bursts of inspiration. Stay on the loop.",
	"Discipline is the difference between intention and execution. You've got this.",
}

func (a *Assistant) handleMotivation(_ string, _ []conversation.Message, intent string) *Result {
	if intent != "motivation" {
		return nil
	}
	quote := motivationQuotes[a.pick(len(motivationQuotes))]
	return &Result{
		Reply: "Motivation delivered: " + quote,
		Actions: []string{
			"Recommendation: schedule a 25-minute focus block.",
			"Hydration reminder: take a sip of water.",
		},
		Intent: "motivation",
		Speak:  true,
	}
}

func (a *Assistant) handleSummary(_ string, history []conversation.Message, intent string) *Result {
	if intent != "summary" {
		return nil
	}
	if len(history) == 0 {
		return &Result{
			Reply:   "There is no conversation history to summarize yet.",
			Actions: []string{"Summary aborted: no prior transmissions detected."},
			Intent:  "summary",
			Speak:   true,
		}
	}

	start := len(history) - historyContext
	if start < 0 {
		start = 0
	}
	snippets := make([]string, 0, historyContext)
	for _, item := range history[start:] {
		snippets = append(snippets, item.SpeakerLabel()+": "+item.Content)
	}
	return &Result{
		Reply: "Summary compiled from recent exchanges:\n" +
			strings.Join(snippets, " | ") +
			"\nLet me know if you'd like a strategic next step.",
		Actions: []string{
			fmt.Sprintf("Summary window: last %d exchanges.", historyContext),
			"Context ready for follow-up.",
		},
		Intent: "summary",
		// Long readouts are rendered, not narrated.
		Speak: false,
	}
}

func (a *Assistant) handlePlan(_ string, _ []conversation.Message, intent string) *Result {
	if intent != "plan" {
		return nil
	}
	return &Result{
		Reply: "Mastery protocol initiated. I recommend a four-week sprint:\n" +
			"Week 1: Fundamentals, core concepts, daily drills.\n" +
			"Week 2: Deep dives, error handling, a mini-project.\n" +
			"Week 3: Structured practice, build a working utility.\n" +
			"Week 4: Integration, automation, ship a portfolio piece.\n" +
			"Signal when you want detailed drills or resources for any phase.",
		Actions: []string{
			"Phase 1 (Week 1): Master the fundamentals and core concepts.",
			"Phase 2 (Week 2): Dive into structure, modularity, and error handling.",
			"Phase 3 (Week 3): Build projects that exercise real data flow.",
			"Phase 4 (Week 4): Explore integration, automation, and deployment.",
		},
		Intent: "plan",
		Speak:  true,
	}
}

func (a *Assistant) callModel(ctx context.Context, message string, history []conversation.Message, intent string) Result {
	if a.uplink == nil {
		return a.offlineResponse(message, intent)
	}

	start := len(history) - historyContext
	if start < 0 {
		start = 0
	}
	reply, err := a.uplink.Complete(ctx, identityPrompt+" Provide structured, tactical responses. Include next steps when useful.", history[start:], message)
	if err != nil {
		a.log.WithError(err).Warn("model uplink failed")
		return Result{
			Reply: "Uplink channel encountered interference. Switching to offline reasoning protocols. " +
				"Issue the command again once the uplink stabilizes if you need deeper synthesis.",
			Actions: []string{"Model exception: " + err.Error()},
			Intent:  "general",
			Speak:   true,
		}
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "Model response did not contain textual output."
	}
	return Result{
		Reply:   reply,
		Actions: []string{"Intent classified as " + intent + ".", "Uplink response delivered."},
		Intent:  intent,
		Speak:   true,
	}
}

var offlineFillers = []string{
	"Channel secured. I'm ready to iterate on that with you.",
	"Acknowledged. Outline your objective and I'll map the next steps.",
	"Directive received. Offline protocols can still handle diagnostics, time checks, math, and summaries.",
	"Standing by. Give me a target and I'll plot an approach.",
}

func (a *Assistant) offlineResponse(message, intent string) Result {
	lowered := strings.ToLower(message)
	if strings.Contains(lowered, "weather") {
		return Result{
			Reply:   "Weather intel requires an external API uplink. Configure an API key and I'll patch in.",
			Actions: []string{"Missing dependency: weather uplink."},
			Intent:  "weather",
			Speak:   true,
		}
	}
	if strings.Contains(lowered, "remind") {
		return Result{
			Reply:   "Reminder scheduling requires a persistence uplink I don't have yet. Log it manually for now.",
			Actions: []string{"Missing dependency: reminder scheduler."},
			Intent:  "reminder",
			Speak:   true,
		}
	}
	return Result{
		Reply:   offlineFillers[a.pick(len(offlineFillers))],
		Actions: []string{"Intent classified as " + intent + ".", "Offline protocols engaged."},
		Intent:  intent,
		Speak:   true,
	}
}
