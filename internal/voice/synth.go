package voice

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Voice is one synthesis voice the host offers.
type Voice struct {
	Name   string
	Locale string
}

// Params tune delivery. Rate and Pitch are multipliers on the engine's
// defaults; 1.0 is neutral.
type Params struct {
	Rate   float64
	Pitch  float64
	Locale string
}

// DefaultParams is the fixed brisk, slightly higher-pitched delivery.
var DefaultParams = Params{Rate: 1.06, Pitch: 1.12, Locale: "en-US"}

// Synthesizer is a text-to-speech engine. Speak is asynchronous; Cancel
// preempts whatever is playing.
type Synthesizer interface {
	Voices() []Voice
	Speak(text string, voice *Voice, params Params) error
	Cancel()
}

// SpeechCommand is the resolved host synthesis tool.
type SpeechCommand struct {
	Path   string
	Flavor string // "say" or "espeak"
}

// SelectSpeechCommand probes for a synthesis tool the way clipboard tools
// are probed: per-OS candidates resolved through lookPath.
func SelectSpeechCommand(goos string, lookPath func(string) (string, error)) (SpeechCommand, error) {
	switch goos {
	case "darwin":
		path, err := lookPath("say")
		if err != nil {
			return SpeechCommand{}, ErrUnsupported
		}
		return SpeechCommand{Path: path, Flavor: "say"}, nil
	case "linux":
		if path, err := lookPath("espeak-ng"); err == nil {
			return SpeechCommand{Path: path, Flavor: "espeak"}, nil
		}
		if path, err := lookPath("espeak"); err == nil {
			return SpeechCommand{Path: path, Flavor: "espeak"}, nil
		}
		return SpeechCommand{}, ErrUnsupported
	default:
		return SpeechCommand{}, ErrUnsupported
	}
}

// CommandSynthesizer narrates through the host synthesis tool. At most one
// utterance plays at a time; a new Speak preempts the previous one.
type CommandSynthesizer struct {
	cmd SpeechCommand

	voicesOnce sync.Once
	voices     []Voice

	mu      sync.Mutex
	playing *exec.Cmd
}

func NewCommandSynthesizer(cmd SpeechCommand) *CommandSynthesizer {
	return &CommandSynthesizer{cmd: cmd}
}

// Voices enumerates the host voices on first use and caches the result. An
// enumeration failure degrades to an empty list rather than an error; voice
// selection copes with no voices.
func (s *CommandSynthesizer) Voices() []Voice {
	s.voicesOnce.Do(func() {
		out, err := exec.Command(s.cmd.Path, voiceListArgs(s.cmd.Flavor)...).Output()
		if err != nil {
			return
		}
		switch s.cmd.Flavor {
		case "say":
			s.voices = parseSayVoices(string(out))
		case "espeak":
			s.voices = parseEspeakVoices(string(out))
		}
	})
	return s.voices
}

func voiceListArgs(flavor string) []string {
	if flavor == "say" {
		return []string{"-v", "?"}
	}
	return []string{"--voices=en"}
}

// parseSayVoices reads `say -v ?` output: "Name  locale  # sample".
func parseSayVoices(out string) []Voice {
	var voices []Voice
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name := line
		rest := ""
		if idx := strings.Index(line, "  "); idx >= 0 {
			name = strings.TrimSpace(line[:idx])
			rest = strings.TrimSpace(line[idx:])
		}
		locale := ""
		if fields := strings.Fields(rest); len(fields) > 0 {
			locale = fields[0]
		}
		if name == "" {
			continue
		}
		voices = append(voices, Voice{Name: name, Locale: locale})
	}
	return voices
}

// parseEspeakVoices reads `espeak --voices=en` output: columns
// "Pty Language Age/Gender VoiceName ...", header line first.
func parseEspeakVoices(out string) []Voice {
	var voices []Voice
	for i, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if i == 0 || len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{Name: fields[3], Locale: fields[1]})
	}
	return voices
}

// Speak starts narration and returns once playback is launched. Playback
// failures are not reported; spawn failures are.
func (s *CommandSynthesizer) Speak(text string, voice *Voice, params Params) error {
	args := s.speakArgs(voice, params)
	cmd := exec.Command(s.cmd.Path, args...)
	cmd.Stdin = strings.NewReader(text)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start synthesis command: %w", err)
	}

	s.mu.Lock()
	s.playing = cmd
	s.mu.Unlock()

	go func() {
		_ = cmd.Wait()
		s.mu.Lock()
		if s.playing == cmd {
			s.playing = nil
		}
		s.mu.Unlock()
	}()
	return nil
}

func (s *CommandSynthesizer) speakArgs(voice *Voice, params Params) []string {
	switch s.cmd.Flavor {
	case "say":
		// say's neutral rate is ~175 wpm; pitch is voice-intrinsic.
		args := []string{"-r", strconv.Itoa(int(175 * params.Rate))}
		if voice != nil {
			args = append(args, "-v", voice.Name)
		}
		return args
	default:
		args := []string{
			"-s", strconv.Itoa(int(175 * params.Rate)),
			"-p", strconv.Itoa(int(50 * params.Pitch)),
		}
		if voice != nil {
			args = append(args, "-v", voice.Name)
		} else if params.Locale != "" {
			args = append(args, "-v", strings.ToLower(params.Locale))
		}
		return args
	}
}

// Cancel kills the playing utterance, if any.
func (s *CommandSynthesizer) Cancel() {
	s.mu.Lock()
	cmd := s.playing
	s.playing = nil
	s.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
