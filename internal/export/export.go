package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"orion-console/internal/conversation"
)

type Exporter struct {
	overrideDir string
	cwd         string
	now         func() time.Time
}

func New(overrideDir string) (*Exporter, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve cwd: %w", err)
	}
	return &Exporter{
		overrideDir: strings.TrimSpace(overrideDir),
		cwd:         cwd,
		now:         time.Now,
	}, nil
}

// Export writes the current transcript as a markdown file and returns the
// path it was written to.
func (e *Exporter) Export(messages []conversation.Message) (string, error) {
	stamp := e.now().UTC()
	path := e.outputPath(stamp)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	md := BuildSessionMarkdown(messages, stamp)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

func BuildTranscriptMarkdown(messages []conversation.Message) string {
	var b strings.Builder
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		b.WriteString("## " + m.SpeakerLabel() + "\n\n")
		b.WriteString(content + "\n\n")
	}
	if b.Len() == 0 {
		return "_No transmissions recorded._\n"
	}
	return strings.TrimSpace(b.String()) + "\n"
}

func BuildSessionMarkdown(messages []conversation.Message, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Orion console transcript\n\n")
	b.WriteString("Exported: " + now.Format(time.RFC3339) + "\n\n")
	b.WriteString(fmt.Sprintf("```text\nmessage_count: %d\n```\n\n", len(messages)))
	transcript := BuildTranscriptMarkdown(messages)
	b.WriteString(transcript)
	if !strings.HasSuffix(transcript, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

func (e *Exporter) outputPath(stamp time.Time) string {
	dir := e.overrideDir
	if dir == "" {
		dir = filepath.Join(e.cwd, "transcripts")
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(e.cwd, dir)
	}
	name := "orion-" + stamp.Format("20060102-150405") + ".md"
	return filepath.Join(dir, name)
}
