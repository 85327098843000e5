package chunker

import (
	"strings"

	"github.com/akolanti/docmind/internal/adapter/utils"
	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/akolanti/docmind/internal/rag/cleaner"
	"github.com/akolanti/docmind/pkg/logger_i"
)

// Chunker splits cleaned text into overlapping, sentence-aligned chunks.
// It keeps no state across calls, so Split is restartable and safe to use
// from multiple goroutines.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	cleaner      *cleaner.Cleaner
	logger       *logger_i.Logger
}

func New(chunkSize, chunkOverlap int, c *cleaner.Cleaner) *Chunker {
	if chunkSize <= 0 {
		chunkSize = config.ChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = config.ChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 5
		}
	}
	if c == nil {
		c = cleaner.Default()
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		cleaner:      c,
		logger:       logger_i.NewLogger("Chunker"),
	}
}

func Default() *Chunker {
	return New(config.ChunkSize, config.ChunkOverlap, cleaner.Default())
}

// Split cleans the text and greedily packs its sentences into chunks of at
// most chunkSize characters, seeding each new chunk with an overlap suffix
// of the previous one. Empty text after cleaning is not an error: it
// returns no chunks and logs a warning.
func (c *Chunker) Split(text, documentId, chatId string, metadata map[string]any) []commonModels.Chunk {
	cleanedText := c.cleaner.Clean(text)
	if cleanedText == "" {
		c.logger.Warn("No content left after cleaning", "documentId", documentId)
		return nil
	}

	sentences := c.cleaner.CleanSentences(splitSentences(cleanedText))
	if len(sentences) == 0 {
		c.logger.Warn("No sentences survived filtering", "documentId", documentId)
		return nil
	}

	var chunks []commonModels.Chunk
	var buffer string
	chunkStart := 0

	for _, sentence := range sentences {
		if buffer != "" && len(buffer)+1+len(sentence) > c.chunkSize {
			chunks = append(chunks, c.newChunk(buffer, documentId, chatId, chunkStart, len(chunks), metadata))

			overlap := overlapSuffix(buffer, c.chunkOverlap)
			chunkStart += len(buffer) - len(overlap)
			if overlap != "" {
				buffer = overlap + " " + sentence
			} else {
				buffer = sentence
			}
			continue
		}

		if buffer == "" {
			buffer = sentence
		} else {
			buffer += " " + sentence
		}
	}

	if buffer != "" {
		chunks = append(chunks, c.newChunk(buffer, documentId, chatId, chunkStart, len(chunks), metadata))
	}

	c.logger.Debug("Split document into chunks", "documentId", documentId, "chunks", len(chunks))
	return chunks
}

func (c *Chunker) newChunk(text, documentId, chatId string, start, index int, metadata map[string]any) commonModels.Chunk {
	chunk := commonModels.Chunk{
		Id:            utils.GetNewUUID(),
		DocumentId:    documentId,
		ChatId:        chatId,
		Text:          text,
		StartPosition: start,
		EndPosition:   start + len(text),
		Length:        len(text),
		ChunkIndex:    index,
	}
	if len(metadata) > 0 {
		chunk.Metadata = make(map[string]any, len(metadata))
		for k, v := range metadata {
			chunk.Metadata[k] = v
		}
	}
	return chunk
}

// overlapSuffix returns the trailing overlapSize characters of the closed
// buffer. When the window contains a sentence boundary, everything up to
// and including that period is trimmed so the overlap starts at the
// boundary; a period that merely terminates the buffer is ignored for
// that purpose. A buffer no longer than the window carries over whole.
func overlapSuffix(text string, overlapSize int) string {
	if overlapSize <= 0 {
		return ""
	}
	if len(text) <= overlapSize {
		return text
	}

	window := text[len(text)-overlapSize:]
	interior := strings.TrimRight(window, ". ")
	if idx := strings.LastIndexByte(interior, '.'); idx >= 0 {
		return strings.TrimSpace(window[idx+1:])
	}
	return window
}

// splitSentences breaks text after '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		ch := text[i]
		if (ch == '.' || ch == '!' || ch == '?') && isSpace(text[i+1]) {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
