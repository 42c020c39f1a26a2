package main

import (
	"log/slog"
	"os"

	"bloodbridge/db"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		logger.Error("DB_URL required")
		os.Exit(1)
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	var err error
	switch direction {
	case "up":
		err = db.MigrateUp(dbURL)
	case "down":
		err = db.MigrateDown(dbURL)
	default:
		logger.Error("usage", "cmd", "migrate [up|down]")
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migration failed", "direction", direction, "error", err)
		os.Exit(1)
	}
	logger.Info("migration complete", "direction", direction)
}
