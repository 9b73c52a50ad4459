package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/auralabs/aura/internal/config"
	"github.com/auralabs/aura/internal/journal"
	"github.com/auralabs/aura/internal/orchestrator"
	"github.com/auralabs/aura/internal/organ"
	"github.com/auralabs/aura/internal/persona"
)

type fakePerceiver struct {
	lastInput    string
	lastQuestion string
	lastPersona  persona.Persona
	inputExisted bool
}

func (f *fakePerceiver) perception(id organ.ID, input string) organ.Perception {
	f.lastInput = input
	if _, err := os.Stat(input); err == nil {
		f.inputExisted = true
	}
	return organ.Perception{Success: true, Organ: id, Input: input, Interpretation: "seen", Timestamp: time.Now()}
}

func (f *fakePerceiver) PerceivePhoto(_ context.Context, input, question string, who persona.Persona) organ.Perception {
	f.lastQuestion, f.lastPersona = question, who
	return f.perception(organ.Vision, input)
}

func (f *fakePerceiver) PerceiveAudio(_ context.Context, input, question string, who persona.Persona) organ.Perception {
	f.lastQuestion, f.lastPersona = question, who
	return f.perception(organ.Hearing, input)
}

func (f *fakePerceiver) Glance(_ context.Context, question string, who persona.Persona) organ.Perception {
	f.lastQuestion, f.lastPersona = question, who
	return organ.Perception{Success: true, Organ: organ.Screen, Interpretation: "home screen"}
}

func (f *fakePerceiver) Read(_ context.Context, path, question string, who persona.Persona) organ.Perception {
	f.lastQuestion, f.lastPersona = question, who
	return f.perception(organ.Document, path)
}

func (f *fakePerceiver) PerceiveMoment(_ context.Context, who persona.Persona, includeScreen bool) orchestrator.MomentPerception {
	f.lastPersona = who
	m := orchestrator.MomentPerception{
		Persona:   who,
		Organs:    map[string]string{"vision": "a desk"},
		Skipped:   map[string]string{"hearing": "microphone not available"},
		Timestamp: time.Now(),
	}
	if includeScreen {
		m.Organs["screen"] = "an editor"
	}
	return m
}

func (f *fakePerceiver) ReadAndSee(_ context.Context, path string, who persona.Persona) orchestrator.ReadAndSee {
	return orchestrator.ReadAndSee{
		Document:  organ.Perception{Success: true, Organ: organ.Document, Input: path, Interpretation: "TXT document with 3 words."},
		Screen:    organ.Perception{Success: false, Organ: organ.Screen, Error: "screenshot tool not found", ErrorKind: organ.ErrNotAvailable},
		Timestamp: time.Now(),
	}
}

func (f *fakePerceiver) StartMonitor(context.Context, persona.Persona, orchestrator.MonitorOptions) *orchestrator.Monitor {
	return nil
}

func (f *fakePerceiver) Status() orchestrator.Status {
	return orchestrator.Status{Summary: "1/2 capabilities ready", Timestamp: time.Now()}
}

type fakeChatter struct {
	reply string
	err   error
	last  string
	who   persona.Persona
}

func (f *fakeChatter) Chat(_ context.Context, message string, who persona.Persona) (string, error) {
	f.last, f.who = message, who
	return f.reply, f.err
}

func (f *fakeChatter) History(context.Context, int) ([]journal.Event, error) {
	return []journal.Event{
		{ID: "1", Role: journal.RoleCaller, Content: "hi", Timestamp: time.Now()},
		{ID: "2", Role: journal.RoleAura, Content: "hello", Timestamp: time.Now()},
	}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakePerceiver, *fakeChatter) {
	t.Helper()
	p := &fakePerceiver{}
	c := &fakeChatter{reply: "hello back"}
	srv := New(config.Default(), p, c, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, p, c
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestChatEndpoint(t *testing.T) {
	ts, _, c := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/chat", "application/json",
		strings.NewReader(`{"message":"hello","persona":"inner"}`))
	if err != nil {
		t.Fatal(err)
	}

	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatalf("success=false: %s", env.Error)
	}
	if c.last != "hello" {
		t.Errorf("message = %q", c.last)
	}
	if c.who != persona.Inner {
		t.Errorf("persona = %v, want Inner", c.who)
	}
}

func TestChatEndpointRequiresMessage(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPhotoUploadIsSavedThenRemoved(t *testing.T) {
	ts, p, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "scene.jpg")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(part, "jpeg-bytes")
	mw.WriteField("question", "what is this?")
	mw.WriteField("persona", "main")
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/photo", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}

	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatalf("success=false: %s", env.Error)
	}
	if !p.inputExisted {
		t.Error("uploaded file did not exist at perceive time")
	}
	if p.lastQuestion != "what is this?" {
		t.Errorf("question = %q", p.lastQuestion)
	}
	if _, err := os.Stat(p.lastInput); !os.IsNotExist(err) {
		t.Errorf("upload %s must be removed after the call", p.lastInput)
	}
}

func TestPhotoByURL(t *testing.T) {
	ts, p, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("url", "https://example.com/clip.mp4")
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/photo", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}

	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatalf("success=false: %s", env.Error)
	}
	if p.lastInput != "https://example.com/clip.mp4" {
		t.Errorf("input = %q", p.lastInput)
	}
}

func TestPerceiveEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/perceive", "application/json",
		strings.NewReader(`{"persona":"main","include_screen":true}`))
	if err != nil {
		t.Fatal(err)
	}

	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatalf("success=false: %s", env.Error)
	}
	result := env.Result.(map[string]interface{})
	organs := result["organs"].(map[string]interface{})
	if organs["screen"] != "an editor" {
		t.Errorf("organs = %v", organs)
	}
	if _, ok := result["skipped"]; !ok {
		t.Error("skipped map missing from moment")
	}
}

func TestReadWithScreenReportsBothChannels(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/read", "application/json",
		strings.NewReader(`{"path":"/docs/notes.txt","with_screen":true}`))
	if err != nil {
		t.Fatal(err)
	}

	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatal("one successful channel must make the composite a success")
	}
	result := env.Result.(map[string]interface{})
	doc := result["document"].(map[string]interface{})
	screen := result["screen"].(map[string]interface{})
	if doc["success"] != true {
		t.Error("document channel should have succeeded")
	}
	if screen["success"] != false {
		t.Error("screen channel should have failed")
	}
}

func TestHistoryEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/history?limit=10")
	if err != nil {
		t.Fatal(err)
	}

	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatalf("success=false: %s", env.Error)
	}
	events := env.Result.([]interface{})
	if len(events) != 2 {
		t.Errorf("got %d events", len(events))
	}
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/history?limit=zero")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}

	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatalf("success=false: %s", env.Error)
	}
	result := env.Result.(map[string]interface{})
	if result["summary"] != "1/2 capabilities ready" {
		t.Errorf("summary = %v", result["summary"])
	}
}

func TestDeliverRejectsUnknownApp(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/deliver", "application/json",
		strings.NewReader(`{"app":"clippy","question":"hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
