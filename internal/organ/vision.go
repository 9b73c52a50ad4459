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

// VisionOrgan interprets images and video through a multimodal provider.
// Input is either a local image file or an http(s) video URL.
type VisionOrgan struct {
	provider llm.Provider
}

// NewVision builds the vision organ. A nil provider yields a permanently
// unavailable organ that still satisfies the contract.
func NewVision(provider llm.Provider) *VisionOrgan {
	return &VisionOrgan{provider: provider}
}

func (v *VisionOrgan) ID() ID { return Vision }

func (v *VisionOrgan) Available() bool {
	return v.provider != nil && v.provider.Available()
}

func (v *VisionOrgan) Perceive(ctx context.Context, input, question string, who persona.Persona) Perception {
	return v.perceiveAs(ctx, Vision, input, question, who)
}

// perceiveAs runs the vision pipeline under a caller-chosen organ identity,
// so the screen organ can delegate here while keeping its own framing.
func (v *VisionOrgan) perceiveAs(ctx context.Context, as ID, input, question string, who persona.Persona) Perception {
	if !v.Available() {
		return failure(as, who, input, ErrNotAvailable, "vision inference is not configured")
	}

	media, p, ok := v.resolveMedia(as, input, who)
	if !ok {
		return p
	}

	prompt := persona.BuildPrompt(string(as), who, question)
	resp, err := v.provider.Chat(ctx, &llm.ChatRequest{
		Messages: []llm.Message{{
			Role:    "user",
			Content: prompt,
			Media:   []llm.Media{media},
		}},
	})
	if err != nil {
		return failure(as, who, input, ErrInferenceFailed, "vision inference: %v", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return failure(as, who, input, ErrInferenceFailed, "vision inference returned no content")
	}

	log.Debug().Str("organ", string(as)).Str("input", input).Int("chars", len(resp.Content)).Msg("perceived")
	return success(as, who, input, resp.Content)
}

// resolveMedia loads the input as inline image bytes, or passes video URLs
// through by reference. On failure the returned Perception explains why.
func (v *VisionOrgan) resolveMedia(as ID, input string, who persona.Persona) (llm.Media, Perception, bool) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return llm.Media{MIMEType: videoMIME(input), URI: input}, Perception{}, true
	}

	info, err := os.Stat(input)
	if err != nil {
		return llm.Media{}, failure(as, who, input, ErrInputMissing, "image not found: %s", input), false
	}
	if info.IsDir() {
		return llm.Media{}, failure(as, who, input, ErrInputMissing, "%s is a directory, not an image", input), false
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return llm.Media{}, failure(as, who, input, ErrInputMissing, "read image: %v", err), false
	}
	return llm.Media{MIMEType: imageMIME(input), Data: data}, Perception{}, true
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}

func videoMIME(url string) string {
	switch strings.ToLower(filepath.Ext(urlPath(url))) {
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "video/mp4"
	}
}

// urlPath strips query and fragment so extension sniffing works on URLs.
func urlPath(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}

var _ Organ = (*VisionOrgan)(nil)
