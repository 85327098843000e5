package ingest

import (
	"path/filepath"
	"strings"

	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/akolanti/docmind/internal/domain/ragerrors"
)

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt", ".md":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

func extractText(path string, contentType commonModels.DocType) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX, commonModels.TXT:
		return extractDocxTxtRtf(path)
	default:
		return nil, ragerrors.New(ragerrors.KindExtraction, "unsupported content type: "+string(contentType))
	}
}

// joinPages flattens extraction output into one text; the blank line
// between pages is a paragraph boundary the cleaner knows how to keep.
func joinPages(pages []rawPage) string {
	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page.Content) == "" {
			continue
		}
		parts = append(parts, page.Content)
	}
	return strings.Join(parts, "\n\n")
}
