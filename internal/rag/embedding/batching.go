package embedding

import "strings"

// blankPlaceholder is substituted for blank input so the backend never
// receives an empty string; the caller still gets a vector in that slot.
const blankPlaceholder = "empty text"

type batchItem struct {
	text   string
	tokens int
}

type textBatch struct {
	items  []batchItem
	tokens int
}

func (b textBatch) texts() []string {
	out := make([]string, len(b.items))
	for i, item := range b.items {
		out[i] = item.text
	}
	return out
}

type batchLimits struct {
	maxTokensPerBatch int
	maxBatchSize      int
	maxTextTokens     int
}

// buildBatches pre-processes every input (placeholder for blanks, token
// truncation, one token count per text) and then greedily packs the items
// into batches that respect both the token and the item cap. Input order
// is preserved across batch boundaries.
func buildBatches(texts []string, tok *Tokenizer, limits batchLimits) []textBatch {
	if len(texts) == 0 {
		return nil
	}

	items := make([]batchItem, 0, len(texts))
	for _, text := range texts {
		cleaned := strings.TrimSpace(text)
		if cleaned == "" {
			cleaned = blankPlaceholder
		}
		if len(cleaned) > 1000 { //quick check before tokenizing
			cleaned = tok.Truncate(cleaned, limits.maxTextTokens)
		}
		items = append(items, batchItem{text: cleaned, tokens: tok.Count(cleaned)})
	}

	var batches []textBatch
	var current textBatch
	for _, item := range items {
		overTokens := current.tokens+item.tokens > limits.maxTokensPerBatch
		overSize := len(current.items) >= limits.maxBatchSize

		if (overTokens || overSize) && len(current.items) > 0 {
			batches = append(batches, current)
			current = textBatch{}
		}
		current.items = append(current.items, item)
		current.tokens += item.tokens
	}
	if len(current.items) > 0 {
		batches = append(batches, current)
	}
	return batches
}
