package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/auralabs/aura/internal/organ"
	"github.com/auralabs/aura/internal/persona"
)

// MonitorOptions configures a continuous monitoring session.
type MonitorOptions struct {
	// Interval is the pause between iterations.
	Interval time.Duration
	// MaxDuration bounds the session; 0 means run until stopped.
	MaxDuration time.Duration
	// Screen watches the display each iteration.
	Screen bool
	// Listen records an audio chunk each iteration.
	Listen bool
	// ListenChunk is the per-iteration recording length.
	ListenChunk time.Duration
}

// Monitor is a running monitoring session. Perceptions stream on Events
// until the session ends, then the channel closes.
type Monitor struct {
	events   chan organ.Perception
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Events streams perceptions as they are produced.
func (m *Monitor) Events() <-chan organ.Perception { return m.events }

// Stop requests cooperative shutdown and waits for the loop to finish any
// in-flight iteration.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}

// Done is closed when the session has fully ended.
func (m *Monitor) Done() <-chan struct{} { return m.done }

// StartMonitor begins a continuous watch/listen loop. The stop signal is
// checked between iterations; each iteration's capture artifact is
// independent and disposable, so stopping mid-session never corrupts
// state.
func (o *Orchestrator) StartMonitor(ctx context.Context, who persona.Persona, opts MonitorOptions) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Listen && opts.ListenChunk <= 0 {
		opts.ListenChunk = o.micDuration
	}

	m := &Monitor{
		events: make(chan organ.Perception, 4),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	go o.monitorLoop(ctx, who, opts, m)
	return m
}

func (o *Orchestrator) monitorLoop(ctx context.Context, who persona.Persona, opts MonitorOptions, m *Monitor) {
	defer close(m.done)
	defer close(m.events)

	var deadline <-chan time.Time
	if opts.MaxDuration > 0 {
		t := time.NewTimer(opts.MaxDuration)
		defer t.Stop()
		deadline = t.C
	}

	log.Info().
		Dur("interval", opts.Interval).
		Bool("screen", opts.Screen).
		Bool("listen", opts.Listen).
		Msg("monitor session started")

	iteration := 0
	for {
		select {
		case <-m.stop:
			log.Info().Int("iterations", iteration).Msg("monitor stopped")
			return
		case <-ctx.Done():
			log.Info().Int("iterations", iteration).Msg("monitor context cancelled")
			return
		case <-deadline:
			log.Info().Int("iterations", iteration).Msg("monitor reached max duration")
			return
		default:
		}

		iteration++
		if opts.Screen {
			if !o.emit(m, o.Glance(ctx, "", who)) {
				return
			}
		}
		if opts.Listen {
			if !o.emit(m, o.Listen(ctx, opts.ListenChunk, "", who)) {
				return
			}
		}

		select {
		case <-m.stop:
			log.Info().Int("iterations", iteration).Msg("monitor stopped")
			return
		case <-ctx.Done():
			return
		case <-deadline:
			log.Info().Int("iterations", iteration).Msg("monitor reached max duration")
			return
		case <-time.After(opts.Interval):
		}
	}
}

// emit delivers a perception unless the session is shutting down. Returns
// false when the loop should exit.
func (o *Orchestrator) emit(m *Monitor, p organ.Perception) bool {
	select {
	case m.events <- p:
		return true
	case <-m.stop:
		return false
	}
}
