package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Screenshot captures the device display through an external utility
// (termux-screenshot by default).
type Screenshot struct {
	toolPath string
	timeout  time.Duration
	dir      string
	probeErr error
}

// ScreenshotOptions configures a Screenshot bridge.
type ScreenshotOptions struct {
	Tool    string
	Timeout time.Duration
	Dir     string
}

// NewScreenshot probes for the screenshot tool and returns the bridge.
func NewScreenshot(opts ScreenshotOptions) *Screenshot {
	if opts.Tool == "" {
		opts.Tool = "termux-screenshot"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}

	s := &Screenshot{timeout: opts.Timeout, dir: opts.Dir}
	s.toolPath, s.probeErr = probeTool(opts.Tool)
	return s
}

// Available reports whether the screenshot tool resolved at construction.
func (s *Screenshot) Available() bool {
	return s.probeErr == nil
}

// ProbeError returns why the bridge is unavailable, or nil.
func (s *Screenshot) ProbeError() error {
	return s.probeErr
}

// Capture takes one screenshot and returns the artifact path. Screenshots
// get no metadata sidecar; they are usually disposable.
func (s *Screenshot) Capture(ctx context.Context) (string, error) {
	if s.probeErr != nil {
		return "", s.probeErr
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	outPath := filepath.Join(s.dir, timestampName("aura_screen", ".png"))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log.Debug().Str("path", outPath).Msg("capturing screenshot")
	if err := runCapture(ctx, s.toolPath, outPath, outPath); err != nil {
		return "", err
	}

	return outPath, nil
}

// Discard removes a screenshot artifact. Missing files are fine.
func (s *Screenshot) Discard(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", filepath.Clean(path)).Msg("failed to discard screenshot")
	}
}
