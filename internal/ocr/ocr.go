package ocr

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"

	Language    string // single tesseract language code, default "eng"
	TessdataDir string

	// HeicConverter selects the external HEIC->PNG tool:
	// "heif-convert" | "magick" | "sips". Empty disables HEIC input.
	HeicConverter string
}

// Result is the raw text extracted from one document.
type Result struct {
	Text     string
	Format   constants.FileFormat
	Method   string // "pdf-text" | "image-ocr"
	Language string
	Duration time.Duration
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Extract picks a strategy based on file extension: PDFs go through the
// pdftotext text layer (scanned-image PDFs yield nothing — known limitation),
// images are preprocessed then recognized with tesseract. Empty output is an
// OCRError, never an empty success.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext)

	var res Result
	var err error
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	default:
		e.logger.Error("ocr.extract.unsupported", "extension", ext)
		return Result{}, &common.UnsupportedFormatError{Ext: ext}
	}
	if err != nil {
		return res, err
	}

	if strings.TrimSpace(res.Text) == "" {
		e.logger.Error("ocr.extract.empty", "path", path, "method", res.Method)
		return res, &common.OCRError{Path: path, Err: errors.New("no text could be extracted")}
	}

	res.Duration = time.Since(start)
	e.logger.Debug("ocr.extract.ok",
		"path", path,
		"method", res.Method,
		"text_bytes", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
