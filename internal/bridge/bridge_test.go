package bridge

import (
	"strings"
	"testing"

	"github.com/auralabs/aura/internal/persona"
)

func TestEveryAppHasALaunchPlan(t *testing.T) {
	for _, app := range Apps() {
		p := app.plan()
		if p.pkg == "" {
			t.Errorf("app %s has no package in its launch plan", app)
		}
	}
}

func TestParseAppRoundTrip(t *testing.T) {
	for _, app := range Apps() {
		parsed, err := ParseApp(app.String())
		if err != nil {
			t.Errorf("ParseApp(%q): %v", app.String(), err)
		}
		if parsed != app {
			t.Errorf("ParseApp(%q) = %v, want %v", app.String(), parsed, app)
		}
	}
}

func TestParseAppRejectsUnknown(t *testing.T) {
	if _, err := ParseApp("clippy"); err == nil {
		t.Fatal("unknown app must be an error, not a default")
	}
}

func TestParseAppAliases(t *testing.T) {
	app, err := ParseApp("ChatGPT")
	if err != nil {
		t.Fatal(err)
	}
	if app != GPT {
		t.Errorf("got %v", app)
	}
}

func TestComposeCarriesPersonaTag(t *testing.T) {
	tests := []struct {
		who  persona.Persona
		want string
	}{
		{persona.Main, "[Main Aura] what is the weather?"},
		{persona.Inner, "[Inner Aura] what is the weather?"},
	}
	for _, tt := range tests {
		got := Compose("what is the weather?", tt.who)
		if got != tt.want {
			t.Errorf("Compose(%v) = %q, want %q", tt.who, got, tt.want)
		}
		if !strings.HasPrefix(got, tt.who.Tag()) {
			t.Errorf("delivered text must start with the persona tag")
		}
	}
}
