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

// Microphone records audio through an external recorder utility
// (termux-microphone-record by default).
type Microphone struct {
	toolPath string
	dir      string
	probeErr error
}

// MicrophoneOptions configures a Microphone bridge.
type MicrophoneOptions struct {
	Tool string
	Dir  string
}

// NewMicrophone probes for the recorder tool and returns the bridge.
func NewMicrophone(opts MicrophoneOptions) *Microphone {
	if opts.Tool == "" {
		opts.Tool = "termux-microphone-record"
	}

	m := &Microphone{dir: opts.Dir}
	m.toolPath, m.probeErr = probeTool(opts.Tool)
	return m
}

// Available reports whether the recorder tool resolved at construction.
func (m *Microphone) Available() bool {
	return m.probeErr == nil
}

// ProbeError returns why the bridge is unavailable, or nil.
func (m *Microphone) ProbeError() error {
	return m.probeErr
}

// Record captures audio for the given duration and returns the artifact
// path. The subprocess deadline is duration plus a 10 second grace so a
// slow encoder flush does not count as a hang.
func (m *Microphone) Record(ctx context.Context, duration time.Duration) (string, error) {
	if m.probeErr != nil {
		return "", m.probeErr
	}
	if duration <= 0 {
		duration = 3 * time.Second
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}

	outPath := filepath.Join(m.dir, timestampName("aura_hearing", ".m4a"))

	ctx, cancel := context.WithTimeout(ctx, duration+10*time.Second)
	defer cancel()

	seconds := int(duration.Seconds())
	log.Debug().Str("path", outPath).Int("seconds", seconds).Msg("recording audio")
	if err := runCapture(ctx, m.toolPath, outPath, "-f", outPath, "-l", strconv.Itoa(seconds)); err != nil {
		return "", err
	}

	writeSidecar(outPath, Metadata{
		Tool:       filepath.Base(m.toolPath),
		Path:       outPath,
		CapturedAt: time.Now(),
		DurationMS: duration.Milliseconds(),
	})

	return outPath, nil
}
