package organ

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/auralabs/aura/internal/cache"
	"github.com/auralabs/aura/internal/extract"
	"github.com/auralabs/aura/internal/llm"
	"github.com/auralabs/aura/internal/persona"
)

// promptTextLimit bounds how much extracted text goes into a prompt.
const promptTextLimit = 5000

// DocumentOrgan reads local files: it extracts text, caches the extraction
// by content hash, and optionally interprets the text through the provider.
//
// The organ works without a provider. In that degraded mode (and whenever
// the caller asks no question) the interpretation is the derived summary,
// so reading never depends on inference being configured.
type DocumentOrgan struct {
	provider llm.Provider
	cache    *cache.Store
	maxChars int
}

// NewDocument builds the document organ. Both provider and cache may be
// nil; extraction still works.
func NewDocument(provider llm.Provider, store *cache.Store, maxChars int) *DocumentOrgan {
	if maxChars <= 0 {
		maxChars = extract.DefaultMaxChars
	}
	return &DocumentOrgan{provider: provider, cache: store, maxChars: maxChars}
}

func (d *DocumentOrgan) ID() ID { return Document }

// Available is true whenever extraction works, which is always.
func (d *DocumentOrgan) Available() bool { return true }

func (d *DocumentOrgan) Perceive(ctx context.Context, input, question string, who persona.Persona) Perception {
	info, err := os.Stat(input)
	if err != nil {
		return failure(Document, who, input, ErrInputMissing, "document not found: %s", input)
	}
	if info.IsDir() {
		return failure(Document, who, input, ErrInputMissing, "%s is a directory, not a document", input)
	}

	entry, p, ok := d.extract(ctx, input, who)
	if !ok {
		return p
	}

	// Without a configured provider, or without a question, the derived
	// summary is the interpretation.
	if d.provider == nil || !d.provider.Available() || strings.TrimSpace(question) == "" {
		return success(Document, who, input, entry.Summary)
	}

	prompt := fmt.Sprintf("%s\n\nDocument content (first %d chars):\n%s",
		persona.BuildPrompt(string(Document), who, question),
		promptTextLimit, extract.Head(entry.Text, promptTextLimit))

	resp, err := d.provider.Chat(ctx, &llm.ChatRequest{
		Messages: []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return failure(Document, who, input, ErrInferenceFailed, "document inference: %v", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return failure(Document, who, input, ErrInferenceFailed, "document inference returned no content")
	}
	return success(Document, who, input, resp.Content)
}

// extract resolves the file's text, consulting the cache first. Cache
// trouble is logged and treated as a miss.
func (d *DocumentOrgan) extract(ctx context.Context, input string, who persona.Persona) (*cache.Entry, Perception, bool) {
	hash, err := cache.HashFile(input)
	if err != nil {
		return nil, failure(Document, who, input, ErrInputMissing, "read document: %v", err), false
	}

	if d.cache != nil {
		if entry, hit, err := d.cache.Lookup(ctx, input, hash); err != nil {
			log.Warn().Err(err).Str("path", input).Msg("extraction cache lookup failed, re-extracting")
		} else if hit {
			log.Debug().Str("path", input).Msg("extraction cache hit")
			return entry, Perception{}, true
		}
	}

	res, err := extract.File(input, d.maxChars)
	if err != nil {
		return nil, failure(Document, who, input, ErrInputMissing, "extract document: %v", err), false
	}

	entry := &cache.Entry{
		Path:     input,
		FileHash: hash,
		FileType: res.FileType,
		Text:     res.Text,
		Summary:  extract.Summary(res.FileType, res.Text),
	}

	if d.cache != nil {
		if err := d.cache.Store(ctx, entry); err != nil {
			log.Warn().Err(err).Str("path", input).Msg("extraction cache store failed")
		}
	}
	return entry, Perception{}, true
}

var _ Organ = (*DocumentOrgan)(nil)
