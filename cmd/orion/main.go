package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"orion-console/internal/config"
	"orion-console/internal/conversation"
	"orion-console/internal/export"
	"orion-console/internal/logging"
	"orion-console/internal/remote"
	"orion-console/internal/store"
	"orion-console/internal/ui"
	"orion-console/internal/voice"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.ParseConsole()
	if err != nil {
		return err
	}

	// The TUI owns stdout, so logs go to a file.
	log, logCloser, err := logging.NewFileLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	kv, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer kv.Close()

	client, err := remote.NewClient(cfg.ServerURL, remote.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return err
	}

	exporter, err := export.New(cfg.ExportDir)
	if err != nil {
		return err
	}

	feed := ui.NewFeed()
	status := conversation.NewStatusMachine(func(s conversation.Status) {
		feed.RelayStatus(s.State, s.Copy)
	})
	history := conversation.NewHistory(kv, log)

	speaker, startupNote := buildSpeaker(cfg, log)

	orch := conversation.NewOrchestrator(status, history, feed, feed, client, speaker, log)
	if startupNote != "" {
		orch.Restore(startupNote)
	} else {
		orch.Restore()
	}

	input := voice.NewInputController(
		func() (voice.Recognizer, error) {
			if cfg.NoVoice {
				return nil, voice.ErrUnsupported
			}
			return voice.NewCommandRecognizer(cfg.ListenCommand, exec.LookPath)
		},
		status,
		orch,
		func(text string) { orch.Submit(context.Background(), text) },
		log,
	)

	model := ui.NewModel(orch, input, exporter, feed)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}

// buildSpeaker probes the host for a speech synthesizer. When none is found
// the console still runs; replies are rendered only.
func buildSpeaker(cfg config.ConsoleConfig, log *logrus.Logger) (conversation.Speaker, string) {
	if cfg.NoVoice {
		return voice.NewOutputController(nil, cfg.VoiceName, log), "Voice disabled by flag."
	}
	cmd, err := voice.SelectSpeechCommand(runtime.GOOS, exec.LookPath)
	if err != nil {
		log.WithError(err).Warn("speech synthesis unavailable")
		return voice.NewOutputController(nil, cfg.VoiceName, log), "Speech synthesis unavailable on this host."
	}
	synth := voice.NewCommandSynthesizer(cmd)
	return voice.NewOutputController(synth, cfg.VoiceName, log), ""
}
