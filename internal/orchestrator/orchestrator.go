// Package orchestrator composes Aura's organs behind one facade. It owns
// one instance of every organ and capture bridge, resolves the capability
// registry at construction, and implements the cross-organ operations:
// moment perception, read-and-see, and continuous monitoring.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/auralabs/aura/internal/cache"
	"github.com/auralabs/aura/internal/capture"
	"github.com/auralabs/aura/internal/config"
	"github.com/auralabs/aura/internal/llm"
	"github.com/auralabs/aura/internal/logging"
	"github.com/auralabs/aura/internal/organ"
	"github.com/auralabs/aura/internal/persona"
	"github.com/auralabs/aura/internal/registry"
)

// Capability names recorded in the registry.
const (
	CapInference  = "inference"
	CapCamera     = "camera-device"
	CapMicrophone = "microphone-device"
	CapScreenshot = "screenshot-tool"
	CapCache      = "extraction-cache"
	CapVision     = "organ-vision"
	CapHearing    = "organ-hearing"
	CapDocument   = "organ-document"
	CapScreen     = "organ-screen"
)

// photoCapturer and audioRecorder abstract the capture bridges so fan-out
// paths can be exercised without real devices.
type photoCapturer interface {
	Available() bool
	Capture(ctx context.Context) (string, error)
}

type audioRecorder interface {
	Available() bool
	Record(ctx context.Context, duration time.Duration) (string, error)
}

// Orchestrator wires organs, capture bridges, and the capability registry.
// There is no ambient global; everything is owned here and torn down by
// Close.
type Orchestrator struct {
	cfg      *config.Config
	provider llm.Provider
	reg      *registry.Registry

	camera photoCapturer
	mic    audioRecorder

	vision   organ.Organ
	hearing  organ.Organ
	document organ.Organ
	screen   organ.Organ

	cache       *cache.Store
	micDuration time.Duration
	log         *logging.Logger
}

// New builds the orchestrator from configuration. Missing capabilities
// degrade the corresponding organs; New fails only on genuinely broken
// state, never on absent devices or credentials.
func New(cfg *config.Config) (*Orchestrator, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	o := &Orchestrator{
		cfg: cfg,
		reg: registry.New(),
		log: logging.Global().WithComponent("orchestrator"),
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		o.reg.MarkUnavailable(CapInference, err.Error())
		o.log.Warn("inference provider not configured: %v", err)
	} else if !provider.Available() {
		o.provider = provider
		o.reg.MarkUnavailable(CapInference, "no API key configured")
		o.log.Warn("inference provider %s has no API key", provider.Name())
	} else {
		o.provider = provider
		o.reg.MarkReady(CapInference)
		o.log.Info("inference provider ready: %s", provider.Name())
	}

	camera := capture.NewCamera(capture.CameraOptions{
		Tool:     cfg.Organs.Camera.Tool,
		CameraID: cfg.Organs.Camera.CameraID,
		Timeout:  time.Duration(cfg.Organs.Camera.TimeoutSec) * time.Second,
		Dir:      cfg.Organs.Camera.Dir,
	})
	o.camera = camera
	o.reg.Resolve(CapCamera, camera.ProbeError())

	mic := capture.NewMicrophone(capture.MicrophoneOptions{
		Tool: cfg.Organs.Microphone.Tool,
		Dir:  cfg.Organs.Microphone.Dir,
	})
	o.mic = mic
	o.reg.Resolve(CapMicrophone, mic.ProbeError())
	o.micDuration = time.Duration(cfg.Organs.Microphone.DefaultDurationSec) * time.Second
	if o.micDuration <= 0 {
		o.micDuration = 5 * time.Second
	}

	shot := capture.NewScreenshot(capture.ScreenshotOptions{
		Tool:    cfg.Organs.Screenshot.Tool,
		Timeout: time.Duration(cfg.Organs.Screenshot.TimeoutSec) * time.Second,
		Dir:     cfg.Organs.Screenshot.Dir,
	})
	o.reg.Resolve(CapScreenshot, shot.ProbeError())

	if cfg.Organs.Document.CachePath != "" {
		store, err := cache.Open(cfg.Organs.Document.CachePath)
		if err != nil {
			// Cache trouble never blocks reading; the organ runs uncached.
			o.reg.MarkUnavailable(CapCache, err.Error())
			o.log.Warn("extraction cache disabled: %v", err)
		} else {
			o.cache = store
			o.reg.MarkReady(CapCache)
		}
	} else {
		o.reg.MarkUnavailable(CapCache, "no cache path configured")
	}

	vision := organ.NewVision(o.provider)
	o.vision = vision
	o.hearing = organ.NewHearing(o.provider)
	o.document = organ.NewDocument(o.provider, o.cache, cfg.Organs.Document.MaxChars)
	o.screen = organ.NewScreen(vision, shot, cfg.Organs.Screenshot.Retain)

	o.resolveOrgan(CapVision, o.vision, "inference not configured")
	o.resolveOrgan(CapHearing, o.hearing, "inference not configured")
	o.resolveOrgan(CapDocument, o.document, "extraction unavailable")
	o.resolveOrgan(CapScreen, o.screen, "needs screenshot tool and inference")

	o.log.Info("orchestrator ready: %s", o.reg.Summary())
	return o, nil
}

func (o *Orchestrator) resolveOrgan(name string, org organ.Organ, reason string) {
	if org.Available() {
		o.reg.MarkReady(name)
		return
	}
	o.reg.MarkUnavailable(name, reason)
}

// Close releases owned resources.
func (o *Orchestrator) Close() error {
	if o.cache != nil {
		return o.cache.Close()
	}
	return nil
}

// Registry exposes the resolved capability set.
func (o *Orchestrator) Registry() *registry.Registry { return o.reg }

// Provider exposes the inference provider for chat-shaped callers. May be
// nil when inference was never configured.
func (o *Orchestrator) Provider() llm.Provider { return o.provider }

// ═══════════════════════════════════════════════════════════════════════════════
// SINGLE-ORGAN OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════

// PerceivePhoto interprets an existing image file or video URL.
func (o *Orchestrator) PerceivePhoto(ctx context.Context, input, question string, who persona.Persona) organ.Perception {
	return o.vision.Perceive(ctx, input, question, who)
}

// Look captures a fresh photo and interprets it.
func (o *Orchestrator) Look(ctx context.Context, question string, who persona.Persona) organ.Perception {
	if o.camera == nil || !o.camera.Available() {
		return organ.Unavailable(organ.Vision, who, "camera not available")
	}
	if !o.vision.Available() {
		return organ.Unavailable(organ.Vision, who, "vision inference not configured")
	}

	path, err := o.camera.Capture(ctx)
	if err != nil {
		return organ.CaptureFailure(organ.Vision, who, fmt.Sprintf("capture photo: %v", err))
	}
	return o.vision.Perceive(ctx, path, question, who)
}

// PerceiveAudio interprets an existing audio file.
func (o *Orchestrator) PerceiveAudio(ctx context.Context, input, question string, who persona.Persona) organ.Perception {
	return o.hearing.Perceive(ctx, input, question, who)
}

// Listen records for the given duration and interprets the audio.
func (o *Orchestrator) Listen(ctx context.Context, duration time.Duration, question string, who persona.Persona) organ.Perception {
	if o.mic == nil || !o.mic.Available() {
		return organ.Unavailable(organ.Hearing, who, "microphone not available")
	}
	if !o.hearing.Available() {
		return organ.Unavailable(organ.Hearing, who, "hearing inference not configured")
	}
	if duration <= 0 {
		duration = o.micDuration
	}

	path, err := o.mic.Record(ctx, duration)
	if err != nil {
		return organ.CaptureFailure(organ.Hearing, who, fmt.Sprintf("record audio: %v", err))
	}
	return o.hearing.Perceive(ctx, path, question, who)
}

// Read extracts and interprets a document.
func (o *Orchestrator) Read(ctx context.Context, path, question string, who persona.Persona) organ.Perception {
	return o.document.Perceive(ctx, path, question, who)
}

// Glance captures the screen and interprets it.
func (o *Orchestrator) Glance(ctx context.Context, question string, who persona.Persona) organ.Perception {
	return o.screen.Perceive(ctx, "", question, who)
}

// Deep runs a deep perception sequence against one organ: a baseline
// perceive followed by the ordered follow-up questions.
func (o *Orchestrator) Deep(ctx context.Context, id organ.ID, input string, questions []string, who persona.Persona) ([]organ.Perception, error) {
	var target organ.Organ
	switch id {
	case organ.Vision:
		target = o.vision
	case organ.Hearing:
		target = o.hearing
	case organ.Document:
		target = o.document
	case organ.Screen:
		target = o.screen
	default:
		return nil, fmt.Errorf("unknown organ %q", id)
	}
	return organ.DeepPerceive(ctx, target, input, questions, who), nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// STATUS
// ═══════════════════════════════════════════════════════════════════════════════

// Status is the orchestrator-wide capability and metrics snapshot.
type Status struct {
	Capabilities []registry.Capability  `json:"capabilities"`
	Summary      string                 `json:"summary"`
	Inference    map[string]interface{} `json:"inference,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// Status reports resolved capabilities and inference metrics.
func (o *Orchestrator) Status() Status {
	return Status{
		Capabilities: o.reg.Snapshot(),
		Summary:      o.reg.Summary(),
		Inference:    llm.GetAllMetrics(),
		Timestamp:    time.Now(),
	}
}
