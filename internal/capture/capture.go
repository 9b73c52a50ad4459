// Package capture wraps the OS-level media utilities Aura's organs record
// with: camera, microphone, and screenshot. Every bridge probes for its
// tool once at construction; a missing tool makes the bridge permanently
// unavailable rather than an error at call time. A capture succeeds only
// when the subprocess exits zero within its deadline AND the output file
// exists.
package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Metadata is the JSON sidecar written next to camera and microphone
// artifacts.
type Metadata struct {
	Tool       string    `json:"tool"`
	Path       string    `json:"path"`
	CapturedAt time.Time `json:"captured_at"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
}

// probeTool resolves a capture utility on PATH. The result is final for
// the process lifetime.
func probeTool(tool string) (string, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", tool)
	}
	return path, nil
}

// runCapture invokes a capture tool and verifies its artifact. ctx bounds
// the subprocess; on deadline the process is killed and the capture fails.
func runCapture(ctx context.Context, toolPath, outPath string, args ...string) error {
	cmd := exec.CommandContext(ctx, toolPath, args...)
	start := time.Now()

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out after %v", filepath.Base(toolPath), time.Since(start).Round(time.Millisecond))
		}
		return fmt.Errorf("%s failed: %w (output: %s)", filepath.Base(toolPath), err, string(out))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("%s exited cleanly but produced no file at %s", filepath.Base(toolPath), outPath)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s produced an empty file at %s", filepath.Base(toolPath), outPath)
	}

	return nil
}

// writeSidecar records capture metadata next to the artifact. Sidecar
// failures are logged, never fatal: the artifact itself is what matters.
func writeSidecar(artifactPath string, meta Metadata) {
	if info, err := os.Stat(artifactPath); err == nil {
		meta.SizeBytes = info.Size()
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return
	}

	sidecar := artifactPath + ".json"
	if err := os.WriteFile(sidecar, data, 0644); err != nil {
		log.Warn().Err(err).Str("path", sidecar).Msg("failed to write capture sidecar")
	}
}

// timestampName builds the dated artifact filename used by all bridges.
func timestampName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s%s", prefix, time.Now().Format("20060102_150405"), ext)
}
