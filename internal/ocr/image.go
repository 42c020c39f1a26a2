package ocr

import (
	"context"
	"fmt"
	"path/filepath"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
	"bloodbridge/internal/imageprep"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	// HEIC goes through an external converter first; neither tesseract nor
	// the preprocessing decoder reads it natively.
	if constants.NormalizeExt(filepath.Ext(path)) == "heic" {
		converted, cleanup, err := e.convertHEIC(ctx, path)
		if err != nil {
			return Result{Format: constants.IMAGE}, &common.OCRError{Path: path, Err: err}
		}
		defer cleanup()
		path = converted
	}

	// Preprocessing degrades to the original path on failure, so OCR always
	// has an input. The processed file is request-scoped.
	processed := imageprep.Preprocess(path, e.logger)
	defer imageprep.Cleanup(path, processed, e.logger)

	txt, err := e.tesseractOCR(ctx, processed)
	if err != nil {
		return Result{Format: constants.IMAGE}, &common.OCRError{Path: path, Err: err}
	}

	return Result{
		Text:     CleanText(txt),
		Format:   constants.IMAGE,
		Method:   "image-ocr",
		Language: e.cfg.Language,
	}, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Language}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}
