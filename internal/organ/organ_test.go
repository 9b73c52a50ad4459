package organ

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/auralabs/aura/internal/cache"
	"github.com/auralabs/aura/internal/llm"
	"github.com/auralabs/aura/internal/persona"
)

// mockProvider records chat calls and returns a canned reply.
type mockProvider struct {
	available bool
	reply     string
	err       error
	calls     []*llm.ChatRequest
}

func (m *mockProvider) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.ChatResponse{Content: m.reply}, nil
}

func (m *mockProvider) Name() string    { return "mock" }
func (m *mockProvider) Available() bool { return m.available }

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVisionNotAvailableMakesNoInferenceCall(t *testing.T) {
	m := &mockProvider{available: false, reply: "unused"}
	v := NewVision(m)

	p := v.Perceive(context.Background(), "photo.jpg", "", persona.Main)

	if p.Success {
		t.Fatal("expected failure")
	}
	if p.ErrorKind != ErrNotAvailable {
		t.Errorf("error kind = %q, want %q", p.ErrorKind, ErrNotAvailable)
	}
	if len(m.calls) != 0 {
		t.Errorf("provider called %d times, want 0", len(m.calls))
	}
}

func TestVisionMissingInput(t *testing.T) {
	m := &mockProvider{available: true, reply: "unused"}
	v := NewVision(m)

	p := v.Perceive(context.Background(), "/no/such/photo.jpg", "", persona.Main)

	if p.Success {
		t.Fatal("expected failure")
	}
	if p.ErrorKind != ErrInputMissing {
		t.Errorf("error kind = %q, want %q", p.ErrorKind, ErrInputMissing)
	}
	if len(m.calls) != 0 {
		t.Errorf("provider called %d times, want 0", len(m.calls))
	}
}

func TestVisionPerceivesImageFile(t *testing.T) {
	m := &mockProvider{available: true, reply: "a sunlit kitchen"}
	v := NewVision(m)
	path := writeTemp(t, "scene.png", []byte("not-really-a-png"))

	p := v.Perceive(context.Background(), path, "", persona.Main)

	if !p.Success {
		t.Fatalf("perceive failed: %s", p.Error)
	}
	if p.Interpretation != "a sunlit kitchen" {
		t.Errorf("interpretation = %q", p.Interpretation)
	}
	if p.Organ != Vision {
		t.Errorf("organ = %q", p.Organ)
	}

	if len(m.calls) != 1 {
		t.Fatalf("provider called %d times, want 1", len(m.calls))
	}
	msg := m.calls[0].Messages[0]
	if len(msg.Media) != 1 || msg.Media[0].MIMEType != "image/png" {
		t.Errorf("media = %+v", msg.Media)
	}
	if len(msg.Media[0].Data) == 0 {
		t.Error("expected inline image bytes")
	}
	if want := persona.DefaultQuestion("vision", persona.Main); !strings.Contains(msg.Content, want) {
		t.Errorf("prompt missing default question %q", want)
	}
}

func TestVisionVideoURLGoesByReference(t *testing.T) {
	m := &mockProvider{available: true, reply: "a short clip"}
	v := NewVision(m)

	p := v.Perceive(context.Background(), "https://example.com/clip.mp4?t=3", "what happens?", persona.Main)

	if !p.Success {
		t.Fatalf("perceive failed: %s", p.Error)
	}
	media := m.calls[0].Messages[0].Media[0]
	if media.URI != "https://example.com/clip.mp4?t=3" {
		t.Errorf("uri = %q", media.URI)
	}
	if media.MIMEType != "video/mp4" {
		t.Errorf("mime = %q", media.MIMEType)
	}
	if len(media.Data) != 0 {
		t.Error("video URL must not be inlined")
	}
}

func TestPersonaRoutesDistinctPrompts(t *testing.T) {
	m := &mockProvider{available: true, reply: "heard something"}
	h := NewHearing(m)
	path := writeTemp(t, "voice.m4a", []byte("audio-bytes"))

	h.Perceive(context.Background(), path, "", persona.Main)
	h.Perceive(context.Background(), path, "", persona.Inner)

	if len(m.calls) != 2 {
		t.Fatalf("provider called %d times, want 2", len(m.calls))
	}
	mainPrompt := m.calls[0].Messages[0].Content
	innerPrompt := m.calls[1].Messages[0].Content
	if mainPrompt == innerPrompt {
		t.Error("Main and Inner personas produced identical prompts")
	}
	if want := persona.DefaultQuestion("hearing", persona.Inner); !strings.Contains(innerPrompt, want) {
		t.Errorf("inner prompt missing %q", want)
	}
}

func TestHearingInferenceFailure(t *testing.T) {
	m := &mockProvider{available: true, err: errors.New("quota exceeded")}
	h := NewHearing(m)
	path := writeTemp(t, "voice.wav", []byte("audio-bytes"))

	p := h.Perceive(context.Background(), path, "", persona.Main)

	if p.Success {
		t.Fatal("expected failure")
	}
	if p.ErrorKind != ErrInferenceFailed {
		t.Errorf("error kind = %q, want %q", p.ErrorKind, ErrInferenceFailed)
	}
	if !strings.Contains(p.Error, "quota exceeded") {
		t.Errorf("error %q should carry the cause", p.Error)
	}
}

func TestDeepPerceiveStagesAndOrder(t *testing.T) {
	m := &mockProvider{available: true, reply: "observation"}
	v := NewVision(m)
	path := writeTemp(t, "scene.jpg", []byte("img"))

	results := DeepPerceive(context.Background(), v, path,
		[]string{"who is present?", "what changed?"}, persona.Main)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantStages := []string{"initial_perception", "follow_up_1", "follow_up_2"}
	for i, want := range wantStages {
		if results[i].Stage != want {
			t.Errorf("result %d stage = %q, want %q", i, results[i].Stage, want)
		}
	}
	if len(m.calls) != 3 {
		t.Errorf("provider called %d times, want 3", len(m.calls))
	}
	if !strings.Contains(m.calls[1].Messages[0].Content, "who is present?") {
		t.Error("first follow-up question not forwarded")
	}
}

func TestDocumentExtractionOnlyWithoutProvider(t *testing.T) {
	d := NewDocument(nil, nil, 0)
	path := writeTemp(t, "note.txt", []byte("three little words"))

	p := d.Perceive(context.Background(), path, "what does it say?", persona.Main)

	if !p.Success {
		t.Fatalf("perceive failed: %s", p.Error)
	}
	if p.Interpretation != "TXT document with 3 words." {
		t.Errorf("interpretation = %q", p.Interpretation)
	}
}

func TestDocumentSummaryWhenNoQuestion(t *testing.T) {
	m := &mockProvider{available: true, reply: "unused"}
	d := NewDocument(m, nil, 0)
	path := writeTemp(t, "note.txt", []byte("a b c d"))

	p := d.Perceive(context.Background(), path, "", persona.Main)

	if !p.Success {
		t.Fatalf("perceive failed: %s", p.Error)
	}
	if p.Interpretation != "TXT document with 4 words." {
		t.Errorf("interpretation = %q", p.Interpretation)
	}
	if len(m.calls) != 0 {
		t.Errorf("provider called %d times, want 0", len(m.calls))
	}
}

func TestDocumentInferenceWithQuestion(t *testing.T) {
	m := &mockProvider{available: true, reply: "it is a grocery list"}
	d := NewDocument(m, nil, 0)
	path := writeTemp(t, "list.txt", []byte("milk eggs bread"))

	p := d.Perceive(context.Background(), path, "what kind of list?", persona.Main)

	if !p.Success {
		t.Fatalf("perceive failed: %s", p.Error)
	}
	if p.Interpretation != "it is a grocery list" {
		t.Errorf("interpretation = %q", p.Interpretation)
	}
	prompt := m.calls[0].Messages[0].Content
	if !strings.Contains(prompt, "what kind of list?") {
		t.Error("question not in prompt")
	}
	if !strings.Contains(prompt, "milk eggs bread") {
		t.Error("extracted text not in prompt")
	}
}

func TestDocumentPopulatesCache(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "extract.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	d := NewDocument(nil, store, 0)
	path := writeTemp(t, "note.md", []byte("# hello\n\nworld"))

	ctx := context.Background()
	first := d.Perceive(ctx, path, "", persona.Main)
	second := d.Perceive(ctx, path, "", persona.Main)

	if !first.Success || !second.Success {
		t.Fatalf("perceive failed: %s / %s", first.Error, second.Error)
	}
	if first.Interpretation != second.Interpretation {
		t.Error("cached read disagrees with fresh extraction")
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("cache holds %d entries, want 1", n)
	}
}

func TestDocumentMissingFile(t *testing.T) {
	d := NewDocument(nil, nil, 0)

	p := d.Perceive(context.Background(), "/no/such/file.txt", "", persona.Main)

	if p.Success {
		t.Fatal("expected failure")
	}
	if p.ErrorKind != ErrInputMissing {
		t.Errorf("error kind = %q, want %q", p.ErrorKind, ErrInputMissing)
	}
}

func TestScreenUnavailableWithoutCaptureTool(t *testing.T) {
	m := &mockProvider{available: true, reply: "unused"}
	s := NewScreen(NewVision(m), nil, false)

	if s.Available() {
		t.Fatal("screen organ must not report available without a capture bridge")
	}

	p := s.Perceive(context.Background(), "", "", persona.Main)
	if p.Success {
		t.Fatal("expected failure")
	}
	if p.ErrorKind != ErrNotAvailable {
		t.Errorf("error kind = %q, want %q", p.ErrorKind, ErrNotAvailable)
	}
	if len(m.calls) != 0 {
		t.Errorf("provider called %d times, want 0", len(m.calls))
	}
}
