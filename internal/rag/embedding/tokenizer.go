package embedding

import (
	"github.com/akolanti/docmind/pkg/logger_i"
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts and truncates by the backend model's own encoding.
// When the model is unknown to tiktoken it falls back to cl100k_base,
// which only changes the precision of the estimate, not batch semantics.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

func NewTokenizer(model string) *Tokenizer {
	log := logger_i.NewLogger("Tokenizer")

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		log.Warn("No tokenizer for model, falling back to cl100k_base", "model", model, "error", err)
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			log.Error("Fallback tokenizer unavailable", "error", err)
			return &Tokenizer{}
		}
	}
	return &Tokenizer{enc: enc}
}

func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	if t.enc == nil {
		//crude estimate keeps batching functional without an encoding
		return (len(text) + 3) / 4
	}
	return len(t.enc.Encode(text, nil, nil))
}

func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if text == "" || maxTokens <= 0 {
		return ""
	}
	if t.enc == nil {
		if len(text) > maxTokens*4 {
			return text[:maxTokens*4]
		}
		return text
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.enc.Decode(tokens[:maxTokens])
}
