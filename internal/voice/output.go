package voice

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// voicePriority is the first-match preference order for narration: the
// assistant persona first, then narrators commonly shipped on desktop hosts.
var voicePriority = []string{"orion", "daniel", "alex", "samantha", "google us english"}

// OutputController narrates replies. A nil synthesizer makes Speak a no-op;
// the startup wiring surfaces the missing capability on the notice board
// once, so nothing is reported here.
type OutputController struct {
	synth    Synthesizer
	override string
	log      *logrus.Logger
}

// NewOutputController wraps synth. override, when non-empty, is a
// user-preferred voice name checked before the built-in priority list.
func NewOutputController(synth Synthesizer, override string, log *logrus.Logger) *OutputController {
	return &OutputController{synth: synth, override: override, log: log}
}

// Speak preempts any utterance in flight and narrates text with the best
// available voice. Fire-and-forget: playback failures stay here.
func (c *OutputController) Speak(text string) {
	if c.synth == nil {
		return
	}
	c.synth.Cancel()

	voice := SelectVoice(c.synth.Voices(), c.override)
	if err := c.synth.Speak(text, voice, DefaultParams); err != nil {
		c.log.WithError(err).Warn("speech synthesis failed")
	}
}

// SelectVoice picks a voice by first-match priority: the override name, the
// persona/narrator list, any US-English voice, any British-English voice,
// the first voice, none.
func SelectVoice(voices []Voice, override string) *Voice {
	if len(voices) == 0 {
		return nil
	}
	if override != "" {
		if v := matchVoice(voices, override); v != nil {
			return v
		}
	}
	for _, want := range voicePriority {
		if v := matchVoice(voices, want); v != nil {
			return v
		}
	}
	if v := matchLocale(voices, "en-us", "en_us"); v != nil {
		return v
	}
	if v := matchLocale(voices, "en-gb", "en_gb"); v != nil {
		return v
	}
	return &voices[0]
}

func matchVoice(voices []Voice, want string) *Voice {
	want = strings.ToLower(want)
	for i, v := range voices {
		if strings.Contains(strings.ToLower(v.Name), want) {
			return &voices[i]
		}
	}
	return nil
}

func matchLocale(voices []Voice, wants ...string) *Voice {
	for i, v := range voices {
		locale := strings.ToLower(v.Locale)
		for _, want := range wants {
			if strings.HasPrefix(locale, want) {
				return &voices[i]
			}
		}
	}
	return nil
}
