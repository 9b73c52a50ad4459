// Package agent implements Aura's text conversation loop: caller messages
// and replies flow through the configured inference provider and both
// sides land in the conversation journal.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/auralabs/aura/internal/journal"
	"github.com/auralabs/aura/internal/llm"
	"github.com/auralabs/aura/internal/logging"
	"github.com/auralabs/aura/internal/persona"
)

const mainSystem = `You are Aura, a thoughtful personal companion. You are
the analytic side: clear, grounded, and precise. Answer directly and keep
your reasoning visible when it helps.`

const innerSystem = `You are Aura, a thoughtful personal companion. You are
the intuitive side: warm, associative, and attentive to feeling. Answer
from impression first, detail second.`

// Agent is the chat loop over provider plus journal.
type Agent struct {
	provider     llm.Provider
	journal      *journal.Store
	historyLimit int
	log          *logging.Logger
}

// New builds the agent. The journal may be nil; chat then runs without
// history or persistence.
func New(provider llm.Provider, store *journal.Store, historyLimit int) *Agent {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Agent{
		provider:     provider,
		journal:      store,
		historyLimit: historyLimit,
		log:          logging.Global().WithComponent("agent"),
	}
}

// Chat answers one caller message under the given persona. The caller
// message, the reply, and any failure are all journaled; journal trouble
// is logged but never blocks the exchange.
func (a *Agent) Chat(ctx context.Context, message string, who persona.Persona) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("empty message")
	}

	a.record(ctx, journal.RoleCaller, message)

	if a.provider == nil || !a.provider.Available() {
		err := fmt.Errorf("inference provider not configured")
		a.record(ctx, journal.RoleError, err.Error())
		return "", err
	}

	req := &llm.ChatRequest{
		SystemPrompt: systemPrompt(who),
		Messages:     append(a.history(ctx), llm.Message{Role: "user", Content: message}),
	}

	resp, err := a.provider.Chat(ctx, req)
	if err != nil {
		a.record(ctx, journal.RoleError, fmt.Sprintf("chat failed: %v", err))
		return "", fmt.Errorf("chat: %w", err)
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		err := fmt.Errorf("chat: provider returned no content")
		a.record(ctx, journal.RoleError, err.Error())
		return "", err
	}

	a.record(ctx, journal.RoleAura, reply)
	return reply, nil
}

// History returns the most recent journaled events, oldest first.
func (a *Agent) History(ctx context.Context, limit int) ([]journal.Event, error) {
	if a.journal == nil {
		return nil, nil
	}
	return a.journal.Recent(ctx, limit)
}

// history converts recent journal events into provider messages. Error
// and system events are bookkeeping, not conversation, and are skipped.
func (a *Agent) history(ctx context.Context) []llm.Message {
	if a.journal == nil {
		return nil
	}

	events, err := a.journal.Recent(ctx, a.historyLimit)
	if err != nil {
		a.log.Warn("history unavailable for this exchange: %v", err)
		return nil
	}

	var msgs []llm.Message
	for _, e := range events {
		switch e.Role {
		case journal.RoleCaller:
			msgs = append(msgs, llm.Message{Role: "user", Content: e.Content})
		case journal.RoleAura:
			msgs = append(msgs, llm.Message{Role: "assistant", Content: e.Content})
		}
	}
	return msgs
}

func (a *Agent) record(ctx context.Context, role, content string) {
	if a.journal == nil {
		return
	}
	if err := a.journal.Append(ctx, role, content); err != nil {
		a.log.Warn("journal append failed: %v", err)
	}
}

func systemPrompt(who persona.Persona) string {
	if who == persona.Inner {
		return innerSystem
	}
	return mainSystem
}
