package capture

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMissingToolIsUnavailableNotFatal(t *testing.T) {
	cam := NewCamera(CameraOptions{Tool: "definitely-not-a-real-camera-tool", Dir: t.TempDir()})
	if cam.Available() {
		t.Fatal("camera with a missing tool should be unavailable")
	}
	if cam.ProbeError() == nil {
		t.Fatal("probe error should be recorded")
	}

	// A capture attempt must fail fast with the probe error, no subprocess.
	if _, err := cam.Capture(context.Background()); err == nil {
		t.Error("capture on unavailable bridge should fail")
	}
}

func TestMicrophoneMissingTool(t *testing.T) {
	mic := NewMicrophone(MicrophoneOptions{Tool: "definitely-not-a-recorder", Dir: t.TempDir()})
	if mic.Available() {
		t.Fatal("microphone with a missing tool should be unavailable")
	}
	if _, err := mic.Record(context.Background(), time.Second); err == nil {
		t.Error("record on unavailable bridge should fail")
	}
}

func TestScreenshotMissingTool(t *testing.T) {
	shot := NewScreenshot(ScreenshotOptions{Tool: "definitely-not-a-screenshot-tool", Dir: t.TempDir()})
	if shot.Available() {
		t.Fatal("screenshot with a missing tool should be unavailable")
	}
}

func TestRunCaptureRequiresArtifact(t *testing.T) {
	// `true` exits zero but writes nothing; that must still be a failure.
	toolPath, err := probeTool("true")
	if err != nil {
		t.Skip("true not on PATH")
	}

	outPath := filepath.Join(t.TempDir(), "artifact.jpg")
	err = runCapture(context.Background(), toolPath, outPath)
	if err == nil {
		t.Fatal("zero exit without an output file should fail")
	}
	if !strings.Contains(err.Error(), "produced no file") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestRunCaptureNonZeroExit(t *testing.T) {
	toolPath, err := probeTool("false")
	if err != nil {
		t.Skip("false not on PATH")
	}

	outPath := filepath.Join(t.TempDir(), "artifact.jpg")
	if err := runCapture(context.Background(), toolPath, outPath); err == nil {
		t.Fatal("non-zero exit should fail")
	}
}

func TestWriteSidecar(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "clip.m4a")
	if err := os.WriteFile(artifact, []byte("audio-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	writeSidecar(artifact, Metadata{
		Tool:       "termux-microphone-record",
		Path:       artifact,
		CapturedAt: time.Now(),
		DurationMS: 3000,
	})

	data, err := os.ReadFile(artifact + ".json")
	if err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("sidecar not valid JSON: %v", err)
	}
	if meta.SizeBytes != int64(len("audio-bytes")) {
		t.Errorf("sidecar should record artifact size, got %d", meta.SizeBytes)
	}
	if meta.DurationMS != 3000 {
		t.Errorf("unexpected duration %d", meta.DurationMS)
	}
}

func TestTimestampName(t *testing.T) {
	name := timestampName("aura_vision", ".jpg")
	if !strings.HasPrefix(name, "aura_vision_") || !strings.HasSuffix(name, ".jpg") {
		t.Errorf("unexpected artifact name %q", name)
	}
}
