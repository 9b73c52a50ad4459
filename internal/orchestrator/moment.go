package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/auralabs/aura/internal/organ"
	"github.com/auralabs/aura/internal/persona"
)

// MomentPerception is the fan-out aggregate over live senses. Organs maps
// organ identity to interpretation text and carries only successes; every
// organ that could not contribute is listed in Skipped with its reason.
// The aggregate itself never fails: an empty Organs map is a valid moment.
type MomentPerception struct {
	Persona   persona.Persona   `json:"persona"`
	Organs    map[string]string `json:"organs"`
	Skipped   map[string]string `json:"skipped,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// PerceiveMoment perceives the current moment through every live sense at
// once: a fresh photo, a short audio recording, and optionally the screen.
// Each attempt is independent; one organ's failure never blocks another's
// contribution.
func (o *Orchestrator) PerceiveMoment(ctx context.Context, who persona.Persona, includeScreen bool) MomentPerception {
	moment := MomentPerception{
		Persona:   who,
		Organs:    make(map[string]string),
		Skipped:   make(map[string]string),
		Timestamp: time.Now(),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(id organ.ID, p organ.Perception) {
		mu.Lock()
		defer mu.Unlock()
		if p.Success {
			moment.Organs[string(id)] = p.Interpretation
		} else {
			moment.Skipped[string(id)] = p.Error
		}
	}
	skip := func(id organ.ID, reason string) {
		mu.Lock()
		defer mu.Unlock()
		moment.Skipped[string(id)] = reason
	}

	switch {
	case o.camera == nil || !o.camera.Available():
		skip(organ.Vision, "camera not available")
	case !o.vision.Available():
		skip(organ.Vision, "vision inference not configured")
	default:
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(organ.Vision, o.Look(ctx, "", who))
		}()
	}

	switch {
	case o.mic == nil || !o.mic.Available():
		skip(organ.Hearing, "microphone not available")
	case !o.hearing.Available():
		skip(organ.Hearing, "hearing inference not configured")
	default:
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(organ.Hearing, o.Listen(ctx, o.micDuration, "", who))
		}()
	}

	if includeScreen {
		switch {
		case !o.reg.Available(CapScreenshot):
			skip(organ.Screen, "screenshot tool not available")
		case !o.screen.Available():
			skip(organ.Screen, "vision inference not configured")
		default:
			wg.Add(1)
			go func() {
				defer wg.Done()
				record(organ.Screen, o.Glance(ctx, "", who))
			}()
		}
	}

	wg.Wait()

	o.log.Info("moment perceived: %d organs contributed, %d skipped",
		len(moment.Organs), len(moment.Skipped))
	return moment
}

// ReadAndSee is the dual-channel read: the document's content and the
// screen's current view, perceived independently. Either channel may fail
// without suppressing the other.
type ReadAndSee struct {
	Document  organ.Perception `json:"document"`
	Screen    organ.Perception `json:"screen"`
	Timestamp time.Time        `json:"timestamp"`
}

// ReadAndSee reads the document at path while glancing at the screen. The
// screen channel is asked about the document by display name, so the two
// perceptions can be correlated by the caller.
func (o *Orchestrator) ReadAndSee(ctx context.Context, path string, who persona.Persona) ReadAndSee {
	docCh := make(chan organ.Perception, 1)
	screenCh := make(chan organ.Perception, 1)

	go func() {
		docCh <- o.document.Perceive(ctx, path, "", who)
	}()
	go func() {
		question := fmt.Sprintf("The user is reading %s. What is visible on the screen right now?", filepath.Base(path))
		screenCh <- o.screen.Perceive(ctx, "", question, who)
	}()

	return ReadAndSee{
		Document:  <-docCh,
		Screen:    <-screenCh,
		Timestamp: time.Now(),
	}
}
