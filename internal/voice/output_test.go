package voice

import (
	"errors"
	"sync"
	"testing"
)

func TestSelectVoicePriorityOrder(t *testing.T) {
	cases := []struct {
		name     string
		voices   []Voice
		override string
		want     string // "" means nil
	}{
		{
			name: "persona name wins",
			voices: []Voice{
				{Name: "Daniel", Locale: "en_GB"},
				{Name: "Orion Prime", Locale: "en_US"},
			},
			want: "Orion Prime",
		},
		{
			name: "narrator before locale",
			voices: []Voice{
				{Name: "Karen", Locale: "en_AU"},
				{Name: "Alex", Locale: "en_US"},
				{Name: "Daniel", Locale: "en_GB"},
			},
			want: "Daniel",
		},
		{
			name: "us english fallback",
			voices: []Voice{
				{Name: "Amelie", Locale: "fr_CA"},
				{Name: "Nora", Locale: "en_US"},
			},
			want: "Nora",
		},
		{
			name: "british fallback",
			voices: []Voice{
				{Name: "Amelie", Locale: "fr_CA"},
				{Name: "Kate", Locale: "en-GB"},
			},
			want: "Kate",
		},
		{
			name: "first voice fallback",
			voices: []Voice{
				{Name: "Amelie", Locale: "fr_CA"},
				{Name: "Yuna", Locale: "ko_KR"},
			},
			want: "Amelie",
		},
		{
			name: "no voices",
			want: "",
		},
		{
			name: "override beats priority",
			voices: []Voice{
				{Name: "Orion Prime", Locale: "en_US"},
				{Name: "Kate", Locale: "en-GB"},
			},
			override: "kate",
			want:     "Kate",
		},
		{
			name: "unknown override falls through",
			voices: []Voice{
				{Name: "Alex", Locale: "en_US"},
			},
			override: "missing",
			want:     "Alex",
		},
	}

	for _, tc := range cases {
		got := SelectVoice(tc.voices, tc.override)
		if tc.want == "" {
			if got != nil {
				t.Fatalf("%s: expected nil voice, got %q", tc.name, got.Name)
			}
			continue
		}
		if got == nil || got.Name != tc.want {
			t.Fatalf("%s: got %+v want %q", tc.name, got, tc.want)
		}
	}
}

type stubSynth struct {
	mu      sync.Mutex
	voices  []Voice
	cancels int
	spoken  []string
	voice   *Voice
	err     error
}

func (s *stubSynth) Voices() []Voice { return s.voices }

func (s *stubSynth) Speak(text string, voice *Voice, _ Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.spoken = append(s.spoken, text)
	s.voice = voice
	return nil
}

func (s *stubSynth) Cancel() {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
}

func TestSpeakPreemptsAndSelects(t *testing.T) {
	synth := &stubSynth{voices: []Voice{{Name: "Alex", Locale: "en_US"}}}
	c := NewOutputController(synth, "", testLogger())

	c.Speak("first")
	c.Speak("second")

	if synth.cancels != 2 {
		t.Fatalf("every speak should cancel in-flight playback, got %d cancels", synth.cancels)
	}
	if len(synth.spoken) != 2 || synth.spoken[1] != "second" {
		t.Fatalf("unexpected utterances: %v", synth.spoken)
	}
	if synth.voice == nil || synth.voice.Name != "Alex" {
		t.Fatalf("unexpected voice: %+v", synth.voice)
	}
}

func TestSpeakWithoutCapabilityIsNoop(t *testing.T) {
	c := NewOutputController(nil, "", testLogger())
	c.Speak("anything") // must not panic
}

func TestSpeakSwallowsEngineErrors(t *testing.T) {
	synth := &stubSynth{err: errors.New("device busy")}
	c := NewOutputController(synth, "", testLogger())
	c.Speak("anything") // fire-and-forget
}

func TestParseSayVoices(t *testing.T) {
	out := "Alex                en_US    # Most people recognize me by my voice.\n" +
		"Daniel              en_GB    # Hello, my name is Daniel.\n" +
		"Amelie              fr_CA    # Bonjour.\n"
	voices := parseSayVoices(out)
	if len(voices) != 3 {
		t.Fatalf("expected 3 voices, got %d", len(voices))
	}
	if voices[0].Name != "Alex" || voices[0].Locale != "en_US" {
		t.Fatalf("unexpected first voice: %+v", voices[0])
	}
}

func TestParseEspeakVoices(t *testing.T) {
	out := "Pty Language Age/Gender VoiceName          File          Other Languages\n" +
		" 2  en-gb          M  english              en            (en-uk 2)(en 2)\n" +
		" 2  en-us          M  english-us           en-us         (en-r 5)(en 3)\n"
	voices := parseEspeakVoices(out)
	if len(voices) != 2 {
		t.Fatalf("expected 2 voices, got %d", len(voices))
	}
	if voices[1].Name != "english-us" || voices[1].Locale != "en-us" {
		t.Fatalf("unexpected voice: %+v", voices[1])
	}
}

func TestSelectSpeechCommand(t *testing.T) {
	found := func(name string) (string, error) { return "/usr/bin/" + name, nil }
	missing := func(string) (string, error) { return "", errors.New("not found") }

	if cmd, err := SelectSpeechCommand("darwin", found); err != nil || cmd.Flavor != "say" {
		t.Fatalf("darwin probe: cmd=%+v err=%v", cmd, err)
	}
	if cmd, err := SelectSpeechCommand("linux", found); err != nil || cmd.Flavor != "espeak" {
		t.Fatalf("linux probe: cmd=%+v err=%v", cmd, err)
	}
	if _, err := SelectSpeechCommand("linux", missing); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := SelectSpeechCommand("windows", found); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported on unknown platform, got %v", err)
	}
}
