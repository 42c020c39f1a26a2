package ocr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
)

type stubRunner struct {
	out   string
	err   error
	calls [][]string
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return []byte(r.out), nil, r.err
}

func newTestExtractor(cfg Config, runner Runner) *Extractor {
	e := NewExtractor(cfg, nil)
	e.runner = runner
	return e
}

func TestExtractPDF(t *testing.T) {
	runner := &stubRunner{out: "City Hospital\r\nBlood Group:  B+\r\n"}
	e := newTestExtractor(Config{}, runner)

	res, err := e.Extract(context.Background(), "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.PDF, res.Format)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, "City Hospital\nBlood Group: B+", res.Text)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"pdftotext", "-layout", "-enc", "UTF-8", "-eol", "unix", "report.pdf", "-"}, runner.calls[0])
}

func TestExtractImage(t *testing.T) {
	// The path does not exist, so preprocessing degrades to the original path
	// and tesseract receives it unchanged.
	runner := &stubRunner{out: "GOVERNMENT OF INDIA\n2345 1234 5670\n"}
	e := newTestExtractor(Config{Language: "eng"}, runner)

	res, err := e.Extract(context.Background(), "card.png")
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, res.Format)
	assert.Equal(t, "image-ocr", res.Method)
	assert.Equal(t, "eng", res.Language)
	assert.Contains(t, res.Text, "2345 1234 5670")

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"tesseract", "card.png", "stdout", "-l", "eng"}, runner.calls[0])
}

func TestExtractImageTessdataDir(t *testing.T) {
	runner := &stubRunner{out: "text"}
	e := newTestExtractor(Config{TessdataDir: "/opt/tessdata"}, runner)

	_, err := e.Extract(context.Background(), "card.jpg")
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "--tessdata-dir")
	assert.Contains(t, runner.calls[0], "/opt/tessdata")
}

func TestExtractUnsupportedExtension(t *testing.T) {
	e := newTestExtractor(Config{}, &stubRunner{})

	_, err := e.Extract(context.Background(), "notes.txt")
	var unsupported *common.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "txt", unsupported.Ext)
}

func TestExtractEmptyOutputIsError(t *testing.T) {
	// A blank page must surface as a failure, never as an empty success the
	// parsers would then chew on.
	e := newTestExtractor(Config{}, &stubRunner{out: "  \n\n  "})

	_, err := e.Extract(context.Background(), "report.pdf")
	var ocrErr *common.OCRError
	assert.ErrorAs(t, err, &ocrErr)
}

func TestExtractRunnerFailure(t *testing.T) {
	e := newTestExtractor(Config{}, &stubRunner{err: errors.New("exit status 1")})

	_, err := e.Extract(context.Background(), "card.jpg")
	var ocrErr *common.OCRError
	require.ErrorAs(t, err, &ocrErr)
	assert.Equal(t, "card.jpg", ocrErr.Path)
}

func TestExtractHEICWithoutConverter(t *testing.T) {
	e := newTestExtractor(Config{}, &stubRunner{out: "text"})

	_, err := e.Extract(context.Background(), "photo.heic")
	var ocrErr *common.OCRError
	assert.ErrorAs(t, err, &ocrErr, "HEIC input needs a configured converter")
}

func TestConfigDefaults(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	assert.Equal(t, "tesseract", e.cfg.Tesseract)
	assert.Equal(t, "pdftotext", e.cfg.Pdftotext)
	assert.Equal(t, "eng", e.cfg.Language)
}

func TestExecRunnerUsesInjectedLogger(t *testing.T) {
	// Exec failures must land on the extractor's logger, not the global one.
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := NewExtractor(Config{Pdftotext: "pdftotext-binary-that-does-not-exist"}, logger)
	_, err := e.Extract(context.Background(), "report.pdf")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "ocr.exec.failed")
}
