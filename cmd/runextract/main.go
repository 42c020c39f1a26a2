package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bloodbridge/constants"
	"bloodbridge/internal/config"
	"bloodbridge/internal/extract"
	"bloodbridge/internal/llm"
	"bloodbridge/internal/llm/groq"
	"bloodbridge/internal/ocr"
)

// runextract runs the document pipeline against a local file, or against
// every supported file in a directory, and prints results as JSON. No
// database; useful for tuning OCR and the parsers, and for camp-folder
// batch intake.
func main() {
	docType := flag.String("type", "id", "document type: id | report")
	useAI := flag.Bool("ai", false, "enable the model strategy (needs GROQ_API_KEY)")
	strict := flag.Bool("strict", false, "escalate validation warnings to issues")
	workers := flag.Int("workers", 4, "worker count for directory mode")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: runextract [-type id|report] [-ai] [-strict] [-workers n] <file-or-dir>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ocrExtractor := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftotext:     cfg.OCR.Pdftotext,
		Language:      cfg.OCR.Language,
		TessdataDir:   cfg.OCR.TessdataDir,
		HeicConverter: cfg.OCR.HeicConverter,
	}, logger)

	var model extract.ModelExtractor
	if *useAI {
		if cfg.LLM.APIKey == "" {
			logger.Error("GROQ_API_KEY required with -ai")
			os.Exit(1)
		}
		client := groq.NewClient(groq.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: float64(cfg.LLM.Temperature),
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		model = llm.NewExtractor(client, logger)
	}

	hybrid := extract.NewHybrid(extract.Config{UseAI: *useAI, Strict: *strict}, ocrExtractor, model, logger)

	var doc constants.DocumentType
	switch *docType {
	case "id":
		doc = constants.DocAadhaar
	case "report":
		doc = constants.DocBloodReport
	default:
		fmt.Fprintf(os.Stderr, "unknown -type %q (want id or report)\n", *docType)
		os.Exit(2)
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Error("stat input", "path", path, "error", err)
		os.Exit(1)
	}

	if info.IsDir() {
		os.Exit(runBatch(hybrid, logger, path, doc, *workers))
	}
	os.Exit(runOne(hybrid, logger, path, doc))
}

func runOne(hybrid *extract.Hybrid, logger *slog.Logger, path string, doc constants.DocumentType) int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var out any
	var err error
	if doc == constants.DocBloodReport {
		out, err = hybrid.ExtractReport(ctx, path)
	} else {
		out, err = hybrid.ExtractIdentity(ctx, path)
	}
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err)
		return 1
	}
	return printJSON(logger, out)
}

// runBatch walks one directory (non-recursive) and pushes every supported
// file through the worker queue.
func runBatch(hybrid *extract.Hybrid, logger *slog.Logger, dir string, doc constants.DocumentType, workers int) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error("read dir", "dir", dir, "error", err)
		return 1
	}

	queue := extract.NewQueue(hybrid, logger, extract.WithWorkers(workers))

	ctx := context.Background()
	go func() {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := constants.NormalizeExt(filepath.Ext(entry.Name()))
			if _, ok := constants.AllowedExtensions[ext]; !ok {
				continue
			}
			_ = queue.Enqueue(ctx, extract.Job{
				Path:     filepath.Join(dir, entry.Name()),
				Document: doc,
			})
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()
		queue.Shutdown(shutdownCtx)
	}()

	type batchLine struct {
		Path     string `json:"path"`
		Error    string `json:"error,omitempty"`
		Identity any    `json:"identity,omitempty"`
		Report   any    `json:"report,omitempty"`
	}

	failed := 0
	enc := json.NewEncoder(os.Stdout)
	for result := range queue.Results() {
		line := batchLine{Path: result.Job.Path}
		if result.Err != nil {
			line.Error = result.Err.Error()
			failed++
		} else if result.Identity != nil {
			line.Identity = result.Identity
		} else {
			line.Report = result.Report
		}
		if err := enc.Encode(line); err != nil {
			logger.Error("encode result", "error", err)
			return 1
		}
	}

	logger.Info("batch complete", "failed", failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func printJSON(logger *slog.Logger, out any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode result", "error", err)
		return 1
	}
	return 0
}
