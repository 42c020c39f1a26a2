// Package imageprep prepares uploaded document photos for OCR: grayscale,
// contrast normalization, sharpening, and binary thresholding. Recognition
// accuracy on phone photos of ID cards is poor without it.
package imageprep

import (
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const defaultThreshold = 128

// Preprocess writes a processed copy of the image at path and returns the new
// path. The file is written next to the input as <name>_processed.png and the
// caller owns its cleanup (see Cleanup). Preprocessing never fails the
// pipeline: on any error the original path is returned so OCR still gets a
// best-effort input.
func Preprocess(path string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		logger.Warn("imageprep.open_failed", "path", path, "error", err)
		return path
	}

	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.0)
	bin := threshold(img, defaultThreshold)

	outPath := processedPath(path)
	if err := imaging.Save(bin, outPath); err != nil {
		logger.Warn("imageprep.save_failed", "path", outPath, "error", err)
		return path
	}

	logger.Debug("imageprep.ok", "in", path, "out", outPath)
	return outPath
}

// Cleanup removes a processed file if it differs from the original upload.
// Failures are logged and swallowed: a leftover temp file must never fail an
// extraction that already succeeded.
func Cleanup(originalPath, processedPath string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if processedPath == "" || processedPath == originalPath {
		return
	}
	if err := os.Remove(processedPath); err != nil {
		logger.Warn("imageprep.cleanup_failed", "path", processedPath, "error", err)
	}
}

// threshold binarizes a grayscale image: luminance >= cutoff becomes white,
// everything else black.
func threshold(img *image.NRGBA, cutoff uint8) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if c.Y >= cutoff {
				out.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				out.Set(x, y, color.NRGBA{A: 255})
			}
		}
	}
	return out
}

func processedPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "_processed.png"
}
