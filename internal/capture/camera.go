package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Camera captures photos through an external camera utility
// (termux-camera-photo by default).
type Camera struct {
	toolPath string
	cameraID int
	timeout  time.Duration
	dir      string
	probeErr error
}

// CameraOptions configures a Camera bridge.
type CameraOptions struct {
	Tool     string
	CameraID int
	Timeout  time.Duration
	Dir      string
}

// NewCamera probes for the camera tool and returns the bridge. A missing
// tool is not an error here; the bridge reports unavailable instead.
func NewCamera(opts CameraOptions) *Camera {
	if opts.Tool == "" {
		opts.Tool = "termux-camera-photo"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	c := &Camera{
		cameraID: opts.CameraID,
		timeout:  opts.Timeout,
		dir:      opts.Dir,
	}
	c.toolPath, c.probeErr = probeTool(opts.Tool)
	return c
}

// Available reports whether the camera tool resolved at construction.
func (c *Camera) Available() bool {
	return c.probeErr == nil
}

// ProbeError returns why the bridge is unavailable, or nil.
func (c *Camera) ProbeError() error {
	return c.probeErr
}

// Capture takes one photo and returns the artifact path. A metadata
// sidecar is written next to the photo.
func (c *Camera) Capture(ctx context.Context) (string, error) {
	if c.probeErr != nil {
		return "", c.probeErr
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}

	outPath := filepath.Join(c.dir, timestampName("aura_vision", ".jpg"))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log.Debug().Str("path", outPath).Int("camera", c.cameraID).Msg("capturing photo")
	if err := runCapture(ctx, c.toolPath, outPath, "-c", strconv.Itoa(c.cameraID), outPath); err != nil {
		return "", err
	}

	writeSidecar(outPath, Metadata{
		Tool:       filepath.Base(c.toolPath),
		Path:       outPath,
		CapturedAt: time.Now(),
	})

	return outPath, nil
}
