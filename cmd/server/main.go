package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/lucenz/chartgen/internal/config"
	"github.com/lucenz/chartgen/internal/logger"
	"github.com/lucenz/chartgen/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnvOverrides()

	zl, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	srv, err := server.New(context.Background(), cfg, zl)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := srv.SetupRouter()
	zl.Info("starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
