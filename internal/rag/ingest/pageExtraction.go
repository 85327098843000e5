package ingest

import (
	"time"

	"github.com/akolanti/docmind/internal/domain/ragerrors"
	"github.com/akolanti/docmind/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

var extractLogger = logger_i.NewLogger("Page Extraction")

func extractPDF(path string) ([]rawPage, error) {
	extractLogger.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.KindExtraction, "failed to open pdf", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	extractLogger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// Log warning but continue with other pages
			extractLogger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	if len(pages) == 0 {
		return nil, ragerrors.New(ragerrors.KindExtraction, "no readable pages in pdf")
	}
	return pages, nil
}

// extractDocxTxtRtf reads a .odt, .docx, .rtf or plaintext file; these
// formats have no page boundaries so everything lands on one page.
func extractDocxTxtRtf(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.KindExtraction, "failed to extract document", err)
	}

	return []rawPage{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

// protectExtract guards against pdf pages that hang the parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", ragerrors.New(ragerrors.KindTimeout, "page extraction timed out")
	}
}
