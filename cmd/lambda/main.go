package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"lovtiti-ussd/internal/app"
)

func main() {
	ctx := context.Background()

	cfg, err := app.ConfigFromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// In-memory sessions do not survive across Lambda instances; use
	// SESSION_BACKEND=redis for anything beyond a single warm container.
	if cfg.SessionBackend == app.BackendMemory {
		logger.Warn("lambda running with in-memory sessions")
	}

	gw, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to assemble gateway", "err", err)
		os.Exit(1)
	}

	lambda.Start(gw.Handler.Handle)
}
