// Package bridge delivers persona-tagged questions to sibling AI
// assistant apps on the device. Delivery is clipboard plus app launch:
// the tagged question is placed on the system clipboard and the target
// app is brought to the foreground for the user to paste into.
package bridge

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/auralabs/aura/internal/persona"
)

// App is a closed enumeration of deliverable assistant applications.
// Adding an app means extending the enum and every switch below; there is
// deliberately no default passthrough for unknown names.
type App int

const (
	Claude App = iota
	GPT
	Gemini
	Perplexity
	Grok
)

// Apps lists every deliverable target, in enum order.
func Apps() []App {
	return []App{Claude, GPT, Gemini, Perplexity, Grok}
}

// String returns the canonical lowercase name.
func (a App) String() string {
	switch a {
	case Claude:
		return "claude"
	case GPT:
		return "gpt"
	case Gemini:
		return "gemini"
	case Perplexity:
		return "perplexity"
	case Grok:
		return "grok"
	}
	return fmt.Sprintf("App(%d)", int(a))
}

// ParseApp resolves a name into an App. Unknown names are an error, never
// a silent default.
func ParseApp(s string) (App, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "claude":
		return Claude, nil
	case "gpt", "chatgpt":
		return GPT, nil
	case "gemini":
		return Gemini, nil
	case "perplexity":
		return Perplexity, nil
	case "grok":
		return Grok, nil
	default:
		return Claude, fmt.Errorf("unknown assistant app %q", s)
	}
}

// launchPlan is one app's delivery strategy: its Android package and how
// it is brought to the foreground.
type launchPlan struct {
	pkg string
	// activity is the explicit component to start; empty means launch by
	// package via the launcher intent.
	activity string
}

// plan returns the app's launch strategy. The switch is exhaustive over
// the enum.
func (a App) plan() launchPlan {
	switch a {
	case Claude:
		return launchPlan{pkg: "com.anthropic.claude"}
	case GPT:
		return launchPlan{pkg: "com.openai.chatgpt"}
	case Gemini:
		return launchPlan{pkg: "com.google.android.apps.bard", activity: ".app.MainActivity"}
	case Perplexity:
		return launchPlan{pkg: "ai.perplexity.app.android"}
	case Grok:
		return launchPlan{pkg: "ai.x.grok"}
	}
	return launchPlan{}
}

// Compose builds the delivered text: the persona's tag prefixed to the
// question.
func Compose(question string, who persona.Persona) string {
	return who.Tag() + " " + strings.TrimSpace(question)
}

// Deliverer hands questions to sibling apps through the clipboard and the
// activity manager. Both tools are probed once at construction.
type Deliverer struct {
	clipPath string
	amPath   string
	probeErr error
	timeout  time.Duration
}

// New probes the delivery tools and returns the bridge. Missing tools make
// the bridge unavailable, not broken.
func New() *Deliverer {
	d := &Deliverer{timeout: 10 * time.Second}

	clip, err := exec.LookPath("termux-clipboard-set")
	if err != nil {
		d.probeErr = fmt.Errorf("clipboard tool: %w", err)
		return d
	}
	d.clipPath = clip

	am, err := exec.LookPath("am")
	if err != nil {
		d.probeErr = fmt.Errorf("activity manager: %w", err)
		return d
	}
	d.amPath = am
	return d
}

// Available reports whether both delivery tools resolved.
func (d *Deliverer) Available() bool { return d.probeErr == nil }

// ProbeError returns why the bridge is unavailable, or nil.
func (d *Deliverer) ProbeError() error { return d.probeErr }

// Deliver places the persona-tagged question on the clipboard and brings
// the target app to the foreground.
func (d *Deliverer) Deliver(ctx context.Context, app App, question string, who persona.Persona) error {
	if d.probeErr != nil {
		return fmt.Errorf("bridge not available: %w", d.probeErr)
	}

	text := Compose(question, who)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	clip := exec.CommandContext(ctx, d.clipPath)
	clip.Stdin = strings.NewReader(text)
	if out, err := clip.CombinedOutput(); err != nil {
		return fmt.Errorf("set clipboard: %w: %s", err, strings.TrimSpace(string(out)))
	}

	p := app.plan()
	var launch *exec.Cmd
	if p.activity != "" {
		launch = exec.CommandContext(ctx, d.amPath, "start", "-n", p.pkg+"/"+p.activity)
	} else {
		launch = exec.CommandContext(ctx, d.amPath, "start",
			"-a", "android.intent.action.MAIN",
			"-c", "android.intent.category.LAUNCHER",
			"-p", p.pkg)
	}
	if out, err := launch.CombinedOutput(); err != nil {
		return fmt.Errorf("launch %s: %w: %s", app, err, strings.TrimSpace(string(out)))
	}

	log.Info().Str("app", app.String()).Str("persona", who.String()).Msg("question delivered")
	return nil
}
