package prompts

import (
	"fmt"
	"strings"
)

// WithContext builds the generation prompt from the retrieved chunks.
func WithContext(question string, contextChunks []string) string {
	context := strings.Join(contextChunks, "\n\n")
	return fmt.Sprintf("Use the following information to answer the question:\n\nContext:\n%s\n\nQuestion: %s\n\nAnswer:", context, question)
}

// WithoutContext is used when retrieval comes back empty; the model restates
// the apology instead of hallucinating an answer.
func WithoutContext(question string) string {
	return fmt.Sprintf("Question: %s\n\nAnswer: Sorry, no relevant information was found to answer your question.", question)
}
