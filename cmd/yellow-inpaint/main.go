package main

import (
	"log"

	"mask-mender/internal/app"
	"mask-mender/internal/config"
	"mask-mender/internal/logger"
	"mask-mender/internal/models"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	appLogger := logger.New(cfg.Log.Format, logger.ParseLevel(cfg.Log.Level))

	application, err := app.NewApplication(models.YellowVariant, cfg, appLogger)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	application.Run()
}
