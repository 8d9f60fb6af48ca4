package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/lucenz/chartgen/internal/config"
	"github.com/lucenz/chartgen/internal/core/caseplan"
	"github.com/lucenz/chartgen/internal/core/identity"
	"github.com/lucenz/chartgen/internal/core/oracle"
	"github.com/lucenz/chartgen/internal/core/purge"
	"github.com/lucenz/chartgen/internal/core/store"
	"github.com/lucenz/chartgen/internal/core/validate"
	"github.com/lucenz/chartgen/internal/core/workflow"
	"github.com/lucenz/chartgen/internal/llm"
	"github.com/lucenz/chartgen/internal/logger"
	"github.com/lucenz/chartgen/internal/render"
	"github.com/lucenz/chartgen/internal/shell"
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

	ctx := context.Background()

	cases, err := caseplan.LoadFile(cfg.Paths.CasePlan)
	if err != nil {
		log.Fatalf("Failed to load case plan: %v", err)
	}

	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	// Best effort: surface a bad key or endpoint before the first real run.
	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := llm.CheckConnection(probeCtx, client); err != nil {
		zl.Warn("oracle pre-flight check failed", "error", err)
	}
	cancel()

	renderer, err := render.NewChartRenderer(cfg.Render)
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}

	patients := store.NewPatientDB(cfg.StorePath())
	history := store.NewHistoryLog(cfg.LogsDir())

	orch := workflow.NewOrchestrator(
		cfg, zl, cases, patients, history,
		oracle.New(client, cfg.Generation.MinDocuments, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		validate.NewValidator(cfg.Validation),
		identity.NewBuilder(cfg.Generation.ExclusionCap, rand.New(rand.NewSource(time.Now().UnixNano()))),
		renderer,
	)
	sched := workflow.NewScheduler(orch)

	sh := shell.New(orch, sched, nil, patients, os.Stdin, os.Stdout)
	purger := purge.New(cfg, zl, patients, history, sh.Confirm)
	sh.SetPurger(purger)

	if err := sh.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
