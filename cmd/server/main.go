// Command server runs the museum's HTTP API. All configuration comes from
// the environment (see internal/config); main only builds the logger,
// loads config, and hands off to internal/server.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wilson400hong/slop-museum/internal/config"
	"github.com/wilson400hong/slop-museum/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The storage path's directory must exist before the backend opens it.
	dataPath := cfg.DBPath
	if cfg.StorageBackend == "file" {
		dataPath = cfg.StorePath
	}
	if dir := filepath.Dir(dataPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create data directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
