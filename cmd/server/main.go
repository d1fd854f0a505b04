package main

import (
	"log"
	"log/slog"

	"mingle/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	server, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}

	slog.Info("Server listening", "port", cfg.Port)
	if err := server.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
