package persona_test

import (
	"strings"
	"testing"

	"github.com/auralabs/aura/internal/persona"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want persona.Persona
	}{
		{"main", persona.Main},
		{"primary", persona.Main},
		{"MAIN", persona.Main},
		{"inner", persona.Inner},
		{"secondary", persona.Inner},
		{" Inner ", persona.Inner},
		{"", persona.Main},
		{"garbage", persona.Main},
	}

	for _, tc := range cases {
		if got := persona.Parse(tc.in); got != tc.want {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseStrictRejectsUnknown(t *testing.T) {
	if _, err := persona.ParseStrict("sideways"); err == nil {
		t.Error("expected error for unknown persona")
	}
	if p, err := persona.ParseStrict("secondary"); err != nil || p != persona.Inner {
		t.Errorf("ParseStrict(secondary) = %v, %v", p, err)
	}
}

func TestSelectIsPersonaSpecific(t *testing.T) {
	// Organs with both framings must route to different preambles.
	for _, organ := range []string{"vision", "hearing", "screen"} {
		main := persona.Select(organ, persona.Main)
		inner := persona.Select(organ, persona.Inner)
		if main == "" || inner == "" {
			t.Fatalf("empty preamble for %s", organ)
		}
		if main == inner {
			t.Errorf("%s: main and inner preambles collapsed to one framing", organ)
		}
	}
}

func TestSelectFallsBackToMain(t *testing.T) {
	// Document defines no inner framing; the fallback must be the exact
	// main preamble, not an error or an empty string.
	main := persona.Select("document", persona.Main)
	inner := persona.Select("document", persona.Inner)
	if inner != main {
		t.Errorf("document inner preamble should fall back to main, got %q", inner)
	}
}

func TestSelectUnknownOrgan(t *testing.T) {
	if persona.Select("taste", persona.Main) == "" {
		t.Error("unknown organ should still resolve to a preamble")
	}
}

func TestDefaultQuestions(t *testing.T) {
	cases := []struct {
		organ string
		p     persona.Persona
		want  string
	}{
		{"vision", persona.Main, "What do I see? Describe this image in detail, including context and meaning."},
		{"vision", persona.Inner, "What do I feel from this image? Describe the atmosphere and emotion."},
		{"hearing", persona.Main, "What do I hear? Transcribe and analyze the audio."},
	}

	for _, tc := range cases {
		if got := persona.DefaultQuestion(tc.organ, tc.p); got != tc.want {
			t.Errorf("DefaultQuestion(%s, %s) = %q, want %q", tc.organ, tc.p, got, tc.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	withQuestion := persona.BuildPrompt("vision", persona.Main, "Is there a cat?")
	if !strings.HasPrefix(withQuestion, persona.Select("vision", persona.Main)) {
		t.Error("prompt should start with the selected preamble")
	}
	if !strings.HasSuffix(withQuestion, "Is there a cat?") {
		t.Error("prompt should end with the caller's question")
	}

	withoutQuestion := persona.BuildPrompt("vision", persona.Inner, "")
	if !strings.Contains(withoutQuestion, persona.DefaultQuestion("vision", persona.Inner)) {
		t.Error("empty question should use the persona-specific default")
	}
}

func TestTag(t *testing.T) {
	if persona.Main.Tag() != "[Main Aura]" {
		t.Errorf("unexpected main tag %q", persona.Main.Tag())
	}
	if persona.Inner.Tag() != "[Inner Aura]" {
		t.Errorf("unexpected inner tag %q", persona.Inner.Tag())
	}
}
