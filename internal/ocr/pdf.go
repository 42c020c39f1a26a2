package ocr

import (
	"context"
	"fmt"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
)

// extractPDF reads the embedded text layer with pdftotext. PDFs that are
// scans with no text layer produce empty output and surface as an OCRError
// from Extract.
func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, _, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return Result{Format: constants.PDF}, &common.OCRError{Path: path, Err: fmt.Errorf("pdftotext: %w", err)}
	}

	return Result{
		Text:   CleanText(string(out)),
		Format: constants.PDF,
		Method: "pdf-text",
	}, nil
}
