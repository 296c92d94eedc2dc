package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zflap/zflap/internal/automation"
	"github.com/zflap/zflap/internal/config"
	"github.com/zflap/zflap/internal/database"
	"github.com/zflap/zflap/internal/database/repository"
	"github.com/zflap/zflap/internal/service"
	"github.com/zflap/zflap/internal/tui"
)

func main() {
	automationMode := flag.Bool("automation", false, "read JSON requests from stdin instead of starting the TUI")
	dbPath := flag.String("db", "", "sqlite database path (overrides config)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedExamples(ctx, db); err != nil {
		log.Fatalf("seed examples: %v", err)
	}

	machineRepo := repository.NewMachineRepo(db)
	runRepo := repository.NewRunRepo(db)

	machines := &service.MachineService{Machines: machineRepo}
	sims := &service.SimulationService{
		Machines: machines,
		Runs:     runRepo,
		MaxSteps: cfg.Sim.MaxSteps,
	}

	if *automationMode {
		r := &automation.Runner{
			In:       os.Stdin,
			Out:      os.Stdout,
			Machines: machines,
			Sims:     sims,
			MaxSteps: cfg.Sim.MaxSteps,
		}
		if err := r.Run(ctx); err != nil {
			log.Fatalf("automation: %v", err)
		}
		return
	}

	p := tea.NewProgram(tui.New(ctx, cfg, tui.Services{Machines: machines, Sims: sims}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
