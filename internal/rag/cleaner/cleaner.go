package cleaner

import (
	stdhtml "html"
	"math"
	"regexp"
	"strings"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/pkg/logger_i"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var (
	multipleSpacesPattern   = regexp.MustCompile(`[ \t]+`)
	multipleNewlinesPattern = regexp.MustCompile(`\n\s*\n\s*\n+`)
	finalSpacesPattern      = regexp.MustCompile(` +`)

	smartQuotesPattern      = regexp.MustCompile(`[“”„]`)
	smartApostrophesPattern = regexp.MustCompile(`[‘’]`)
	dashesPattern           = regexp.MustCompile(`[–—]`)
	ellipsisPattern         = regexp.MustCompile(`\.{3,}`)
	spaceBeforePunctPattern = regexp.MustCompile(`\s+([.,!?;:])`)
	duplicatePunctPattern   = regexp.MustCompile(`([.,!?;:])\s*[.,!?;:]`)
	//\s* also swallows newlines after punctuation, so paragraph breaks that
	//follow a sentence end become a single space
	spaceAfterPunctPattern  = regexp.MustCompile(`([.,!?;:])\s*([A-Za-z])`)

	//non-printable bytes outside newline/tab/carriage-return
	controlCharsPattern = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\u009f]")

	tagStripPattern = regexp.MustCompile(`<[^>]+>`)
)

// Cleaner normalizes raw extracted text before chunking. Every stage is
// independently toggleable and the whole pipeline is deterministic, so
// Clean(Clean(t)) == Clean(t).
type Cleaner struct {
	removeHTML           bool
	normalizeWhitespace  bool
	normalizePunctuation bool
	removeControlChars   bool
	unicodeNormalization bool
	unicodeForm          norm.Form
	minSentenceLength    int
	minWords             int
	logger               *logger_i.Logger
}

type Options struct {
	RemoveHTML           bool
	NormalizeWhitespace  bool
	NormalizePunctuation bool
	RemoveControlChars   bool
	UnicodeNormalization bool
	UnicodeForm          string
	MinSentenceLength    int
	MinWords             int
}

func DefaultOptions() Options {
	return Options{
		RemoveHTML:           config.CleaningRemoveHTML,
		NormalizeWhitespace:  config.CleaningNormalizeWhitespace,
		NormalizePunctuation: config.CleaningNormalizePunctuation,
		RemoveControlChars:   config.CleaningRemoveControlChars,
		UnicodeNormalization: config.CleaningUnicodeNormalization,
		UnicodeForm:          config.CleaningUnicodeForm,
		MinSentenceLength:    config.CleaningMinSentenceLength,
		MinWords:             config.CleaningMinWords,
	}
}

func New(opts Options) *Cleaner {
	c := &Cleaner{
		removeHTML:           opts.RemoveHTML,
		normalizeWhitespace:  opts.NormalizeWhitespace,
		normalizePunctuation: opts.NormalizePunctuation,
		removeControlChars:   opts.RemoveControlChars,
		unicodeNormalization: opts.UnicodeNormalization,
		minSentenceLength:    opts.MinSentenceLength,
		minWords:             opts.MinWords,
		logger:               logger_i.NewLogger("TextCleaner"),
	}

	switch opts.UnicodeForm {
	case "NFC":
		c.unicodeForm = norm.NFC
	case "NFD":
		c.unicodeForm = norm.NFD
	case "NFKC":
		c.unicodeForm = norm.NFKC
	case "NFKD":
		c.unicodeForm = norm.NFKD
	default:
		c.logger.Warn("Invalid unicode form, using NFC", "form", opts.UnicodeForm)
		c.unicodeForm = norm.NFC
	}
	return c
}

func Default() *Cleaner {
	return New(DefaultOptions())
}

// Clean runs the full normalization pipeline over raw text.
// Empty or whitespace-only input yields empty output.
func (c *Cleaner) Clean(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if c.unicodeNormalization {
		text = c.unicodeForm.String(text)
	}

	if c.removeHTML {
		text = c.stripMarkup(text)
	}

	if c.removeControlChars {
		text = controlCharsPattern.ReplaceAllString(text, "")
	}

	if c.normalizeWhitespace {
		text = normalizeWhitespace(text)
	}

	if c.normalizePunctuation {
		text = normalizePunctuation(text)
	}

	return strings.TrimSpace(text)
}

// stripMarkup parses the input as HTML and keeps visible text only,
// dropping script and style subtrees. The regex tag-strip is strictly a
// degraded fallback for unparsable input.
func (c *Cleaner) stripMarkup(text string) string {
	unescaped := stdhtml.UnescapeString(text)

	root, err := html.Parse(strings.NewReader(unescaped))
	if err != nil {
		c.logger.Warn("HTML parsing failed, falling back to tag stripping", "error", err)
		return tagStripPattern.ReplaceAllString(unescaped, "")
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return sb.String()
}

func normalizeWhitespace(text string) string {
	text = multipleSpacesPattern.ReplaceAllString(text, " ")

	//3+ newlines become a paragraph break
	text = multipleNewlinesPattern.ReplaceAllString(text, "\n\n")

	//a lone newline is a soft wrap, not a paragraph break; Go regexp has
	//no lookbehind, so paragraph breaks are parked on a sentinel first
	text = strings.ReplaceAll(text, "\n\n", "\x00")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\x00", "\n\n")

	return finalSpacesPattern.ReplaceAllString(text, " ")
}

func normalizePunctuation(text string) string {
	text = smartQuotesPattern.ReplaceAllString(text, `"`)
	text = smartApostrophesPattern.ReplaceAllString(text, "'")
	text = dashesPattern.ReplaceAllString(text, "-")
	text = ellipsisPattern.ReplaceAllString(text, "...")

	text = spaceBeforePunctPattern.ReplaceAllString(text, "$1")
	text = duplicatePunctPattern.ReplaceAllString(text, "$1")

	//exactly one space between sentence punctuation and the next letter
	text = spaceAfterPunctPattern.ReplaceAllString(text, "$1 $2")

	return text
}

// CleanSentences cleans each sentence and drops degenerate ones: a sentence
// survives only if it meets BOTH the minimum character length and the
// minimum word count.
func (c *Cleaner) CleanSentences(sentences []string) []string {
	var cleaned []string
	for _, sentence := range sentences {
		s := c.Clean(sentence)
		if s == "" {
			continue
		}
		if len(s) >= c.minSentenceLength && len(strings.Fields(s)) >= c.minWords {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

type Stats struct {
	OriginalLength       int     `json:"original_length"`
	CleanedLength        int     `json:"cleaned_length"`
	ReductionPercent     float64 `json:"reduction_percent"`
	OriginalWords        int     `json:"original_words"`
	CleanedWords         int     `json:"cleaned_words"`
	WordReductionPercent float64 `json:"word_reduction_percent"`
}

// CleaningStats reports how much the pipeline removed, for observability.
// An empty original reports 0% reduction instead of dividing by zero.
func CleaningStats(original, cleaned string) Stats {
	stats := Stats{
		OriginalLength: len(original),
		CleanedLength:  len(cleaned),
		OriginalWords:  len(strings.Fields(original)),
		CleanedWords:   len(strings.Fields(cleaned)),
	}
	if stats.OriginalLength > 0 {
		stats.ReductionPercent = roundPercent(1 - float64(stats.CleanedLength)/float64(stats.OriginalLength))
	}
	if stats.OriginalWords > 0 {
		stats.WordReductionPercent = roundPercent(1 - float64(stats.CleanedWords)/float64(stats.OriginalWords))
	}
	return stats
}

func roundPercent(fraction float64) float64 {
	return math.Round(fraction*100*100) / 100
}
