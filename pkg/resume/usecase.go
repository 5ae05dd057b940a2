package resume

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/artem13815/resumebot/pkg/llm"
)

// Extractor turns resume text into a Resume with one model call.
type Extractor interface {
	Extract(ctx context.Context, text string) (Resume, error)
}

type extractor struct {
	llm llm.ChatModel
	log *slog.Logger
}

// NewExtractor creates the default implementation.
func NewExtractor(model llm.ChatModel, logger *slog.Logger) Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &extractor{
		llm: model,
		log: logger,
	}
}

// Extract sends the whole text; length limits are left to the provider.
func (s *extractor) Extract(ctx context.Context, text string) (Resume, error) {
	text = strings.TrimSpace(text)
	s.log.Debug("extracting resume", "chars", utf8.RuneCountInString(text))

	raw, err := s.llm.Ask(ctx, systemPrompt, buildUserPrompt(text))
	if err != nil {
		return Resume{}, &ProviderError{Err: err}
	}
	return Parse(raw)
}

// Parse decodes a model reply. Markdown fences around the JSON are tolerated;
// anything else that is not the expected object is a ParseError.
func Parse(raw string) (Resume, error) {
	body := []byte(stripFences(raw))
	if !json.Valid(body) {
		var r Resume
		err := json.Unmarshal(body, &r)
		return Resume{}, &ParseError{Raw: excerpt(raw), Err: err}
	}
	if err := checkShape(body); err != nil {
		return Resume{}, &ParseError{Raw: excerpt(raw), Err: err}
	}

	var r Resume
	if err := json.Unmarshal(body, &r); err != nil {
		return Resume{}, &ParseError{Raw: excerpt(raw), Err: err}
	}
	r.normalize()
	if err := checkFields(r); err != nil {
		return Resume{}, &ParseError{Raw: excerpt(raw), Err: err}
	}
	return r, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string (```json)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func excerpt(s string) string {
	const limit = 500
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "…"
}
