package organ

import (
	"context"

	"github.com/auralabs/aura/internal/capture"
	"github.com/auralabs/aura/internal/persona"
)

// ScreenOrgan captures the device display and delegates interpretation to
// the vision pipeline under its own framing. The screenshot artifact is
// discarded after interpretation unless retention is enabled.
type ScreenOrgan struct {
	vision *VisionOrgan
	shot   *capture.Screenshot
	retain bool
}

// NewScreen builds the screen organ.
func NewScreen(vision *VisionOrgan, shot *capture.Screenshot, retain bool) *ScreenOrgan {
	return &ScreenOrgan{vision: vision, shot: shot, retain: retain}
}

func (s *ScreenOrgan) ID() ID { return Screen }

// Available requires both the screenshot tool and vision inference.
func (s *ScreenOrgan) Available() bool {
	return s.shot != nil && s.shot.Available() && s.vision != nil && s.vision.Available()
}

// Perceive ignores input: the screen organ supplies its own, a fresh
// screenshot.
func (s *ScreenOrgan) Perceive(ctx context.Context, _, question string, who persona.Persona) Perception {
	if s.shot == nil || !s.shot.Available() {
		return failure(Screen, who, "", ErrNotAvailable, "screenshot capture is not available")
	}
	if s.vision == nil || !s.vision.Available() {
		return failure(Screen, who, "", ErrNotAvailable, "vision inference is not configured")
	}

	path, err := s.shot.Capture(ctx)
	if err != nil {
		return failure(Screen, who, "", ErrCaptureFailed, "capture screen: %v", err)
	}
	if !s.retain {
		defer s.shot.Discard(path)
	}

	p := s.vision.perceiveAs(ctx, Screen, path, question, who)
	return p
}

var _ Organ = (*ScreenOrgan)(nil)
