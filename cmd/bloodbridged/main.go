package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodbridge/db"
	"bloodbridge/internal/config"
	"bloodbridge/internal/export"
	"bloodbridge/internal/extract"
	"bloodbridge/internal/llm"
	"bloodbridge/internal/llm/groq"
	"bloodbridge/internal/match"
	"bloodbridge/internal/ocr"
	"bloodbridge/internal/repository"
	"bloodbridge/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.MigrateUp(cfg.DB.URL); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	sqlDB, pool, err := repository.Open(ctx, repository.Config{
		URL:             cfg.DB.URL,
		MaxConns:        int32(cfg.DB.MaxConns),
		MinConns:        int32(cfg.DB.MaxIdle),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
		DialTimeout:     cfg.DB.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repository.Close(sqlDB, pool, logger)

	if err := repository.HealthCheck(ctx, sqlDB, 3*time.Second, logger); err != nil {
		logger.Error("db health failed", "error", err)
		os.Exit(1)
	}

	donors := repository.NewDonorRepository(sqlDB, logger)
	needers := repository.NewNeederRepository(sqlDB, logger)
	extractions := repository.NewExtractionRepository(sqlDB, logger)

	ocrExtractor := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftotext:     cfg.OCR.Pdftotext,
		Language:      cfg.OCR.Language,
		TessdataDir:   cfg.OCR.TessdataDir,
		HeicConverter: cfg.OCR.HeicConverter,
	}, logger)

	var model extract.ModelExtractor
	if cfg.LLM.UseAI {
		client := groq.NewClient(groq.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: float64(cfg.LLM.Temperature),
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		model = llm.NewExtractor(client, logger)
	}

	hybrid := extract.NewHybrid(extract.Config{
		UseAI:  cfg.LLM.UseAI,
		Strict: cfg.Server.StrictMode(),
	}, ocrExtractor, model, logger)

	srv := server.New(server.Deps{
		Config:      cfg,
		Hybrid:      hybrid,
		Scorer:      match.NewScorer(cfg.Match.MaxDistanceKM),
		Donors:      donors,
		Needers:     needers,
		Extractions: extractions,
		Exporter:    export.NewService(donors, logger),
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr, "strict", cfg.Server.StrictMode(), "use_ai", cfg.LLM.UseAI)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.Server.StrictMode() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
