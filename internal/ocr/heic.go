package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// convertHEIC converts a HEIC/HEIF file to PNG with an external converter so
// tesseract and the preprocessing stage can read it. Returns the PNG path and
// a cleanup that removes the temp directory.
func (e *Extractor) convertHEIC(ctx context.Context, in string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "bb-heic-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "page.png")

	switch e.cfg.HeicConverter {
	case "heif-convert":
		if _, _, err := e.runner.Run(ctx, "heif-convert", in, out); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("heif-convert: %w", err)
		}
	case "magick":
		if _, _, err := e.runner.Run(ctx, "magick", in, out); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("magick convert: %w", err)
		}
	case "sips":
		if _, _, err := e.runner.Run(ctx, "sips", "-s", "format", "png", in, "--out", out); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("sips convert: %w", err)
		}
	default:
		cleanup()
		return "", nil, fmt.Errorf("HEIC not supported: set ocr.Config.HeicConverter to one of: heif-convert | magick | sips")
	}

	if _, err := os.Stat(out); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("HEIC conversion produced no output: %v", err)
	}
	return out, cleanup, nil
}
