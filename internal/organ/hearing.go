package organ

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/auralabs/aura/internal/llm"
	"github.com/auralabs/aura/internal/persona"
)

// HearingOrgan interprets recorded audio through a multimodal provider.
type HearingOrgan struct {
	provider llm.Provider
}

// NewHearing builds the hearing organ.
func NewHearing(provider llm.Provider) *HearingOrgan {
	return &HearingOrgan{provider: provider}
}

func (h *HearingOrgan) ID() ID { return Hearing }

func (h *HearingOrgan) Available() bool {
	return h.provider != nil && h.provider.Available()
}

func (h *HearingOrgan) Perceive(ctx context.Context, input, question string, who persona.Persona) Perception {
	if !h.Available() {
		return failure(Hearing, who, input, ErrNotAvailable, "hearing inference is not configured")
	}

	info, err := os.Stat(input)
	if err != nil {
		return failure(Hearing, who, input, ErrInputMissing, "audio not found: %s", input)
	}
	if info.IsDir() {
		return failure(Hearing, who, input, ErrInputMissing, "%s is a directory, not an audio file", input)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return failure(Hearing, who, input, ErrInputMissing, "read audio: %v", err)
	}

	prompt := persona.BuildPrompt(string(Hearing), who, question)
	resp, err := h.provider.Chat(ctx, &llm.ChatRequest{
		Messages: []llm.Message{{
			Role:    "user",
			Content: prompt,
			Media:   []llm.Media{{MIMEType: audioMIME(input), Data: data}},
		}},
	})
	if err != nil {
		return failure(Hearing, who, input, ErrInferenceFailed, "hearing inference: %v", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return failure(Hearing, who, input, ErrInferenceFailed, "hearing inference returned no content")
	}

	log.Debug().Str("organ", "hearing").Str("input", input).Int("chars", len(resp.Content)).Msg("perceived")
	return success(Hearing, who, input, resp.Content)
}

func audioMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".aac":
		return "audio/aac"
	default:
		// termux-microphone-record produces .m4a
		return "audio/mp4"
	}
}

var _ Organ = (*HearingOrgan)(nil)
