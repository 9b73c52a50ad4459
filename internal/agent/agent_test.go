package agent

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/auralabs/aura/internal/journal"
	"github.com/auralabs/aura/internal/llm"
	"github.com/auralabs/aura/internal/persona"
)

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

func openJournal(t *testing.T) *journal.Store {
	t.Helper()
	s, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestChatJournalsBothSides(t *testing.T) {
	j := openJournal(t)
	m := &mockProvider{available: true, reply: "hello back"}
	a := New(m, j, 20)
	ctx := context.Background()

	reply, err := a.Chat(ctx, "hello", persona.Main)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "hello back" {
		t.Errorf("reply = %q", reply)
	}

	events, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("journaled %d events, want 2", len(events))
	}
	if events[0].Role != journal.RoleCaller || events[0].Content != "hello" {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[1].Role != journal.RoleAura || events[1].Content != "hello back" {
		t.Errorf("event 1 = %+v", events[1])
	}
}

func TestChatThreadsHistory(t *testing.T) {
	j := openJournal(t)
	m := &mockProvider{available: true, reply: "noted"}
	a := New(m, j, 20)
	ctx := context.Background()

	if _, err := a.Chat(ctx, "my name is Sam", persona.Main); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Chat(ctx, "what is my name?", persona.Main); err != nil {
		t.Fatal(err)
	}

	second := m.calls[1]
	var sawEarlier bool
	for _, msg := range second.Messages {
		if strings.Contains(msg.Content, "my name is Sam") {
			sawEarlier = true
		}
	}
	if !sawEarlier {
		t.Error("second exchange did not carry the first into history")
	}
	if second.Messages[len(second.Messages)-1].Content != "what is my name?" {
		t.Error("current message must come last")
	}
}

func TestChatPersonaSystemPrompts(t *testing.T) {
	m := &mockProvider{available: true, reply: "ok"}
	a := New(m, nil, 0)
	ctx := context.Background()

	if _, err := a.Chat(ctx, "hi", persona.Main); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Chat(ctx, "hi", persona.Inner); err != nil {
		t.Fatal(err)
	}

	if m.calls[0].SystemPrompt == m.calls[1].SystemPrompt {
		t.Error("Main and Inner must use different system prompts")
	}
}

func TestChatProviderFailureIsJournaled(t *testing.T) {
	j := openJournal(t)
	m := &mockProvider{available: true, err: errors.New("rate limited")}
	a := New(m, j, 20)
	ctx := context.Background()

	if _, err := a.Chat(ctx, "hello", persona.Main); err == nil {
		t.Fatal("expected error")
	}

	events, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("journaled %d events, want caller + error", len(events))
	}
	if events[1].Role != journal.RoleError {
		t.Errorf("event 1 role = %q, want %q", events[1].Role, journal.RoleError)
	}
	if !strings.Contains(events[1].Content, "rate limited") {
		t.Errorf("error event %q should carry the cause", events[1].Content)
	}
}

func TestChatNoProvider(t *testing.T) {
	a := New(nil, nil, 0)

	if _, err := a.Chat(context.Background(), "hello", persona.Main); err == nil {
		t.Fatal("expected error without a provider")
	}
}

func TestChatEmptyMessage(t *testing.T) {
	m := &mockProvider{available: true, reply: "unused"}
	a := New(m, nil, 0)

	if _, err := a.Chat(context.Background(), "   ", persona.Main); err == nil {
		t.Fatal("expected error for empty message")
	}
	if len(m.calls) != 0 {
		t.Errorf("provider called %d times, want 0", len(m.calls))
	}
}
