package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/pips-pilgrimage/internal/catalog"
	"github.com/tatianab/pips-pilgrimage/internal/config"
	"github.com/tatianab/pips-pilgrimage/internal/engine"
	"github.com/tatianab/pips-pilgrimage/internal/oracle"
	"github.com/tatianab/pips-pilgrimage/internal/rng"
	"github.com/tatianab/pips-pilgrimage/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	seed := flag.String("seed", cfg.Seed, "seed text for a reproducible run")
	offline := flag.Bool("offline", false, "never call the remote narrator")
	remoteEvents := flag.Bool("remote-events", cfg.RemoteEvents, "let the remote narrator replace fixed encounters")
	journeyID := flag.Int("journey", 0, "play only the journey with this id")
	chronicleDir := flag.String("chronicles", cfg.ChronicleDir, "directory for run chronicles; empty disables export")
	flag.Parse()

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "pilgrimage")
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	cat, err := catalog.Load()
	if err != nil {
		fmt.Printf("Error loading journeys: %v\n", err)
		os.Exit(1)
	}

	if *journeyID != 0 {
		if _, ok := cat.Journey(*journeyID); !ok {
			fmt.Printf("Error: no journey with id %d\n", *journeyID)
			os.Exit(1)
		}
	}

	if *seed == "" {
		if *seed, err = rng.NewSeedText(); err != nil {
			fmt.Printf("Error seeding: %v\n", err)
			os.Exit(1)
		}
	}
	src, err := rng.FromText(*seed)
	if err != nil {
		fmt.Printf("Error seeding: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Starting run with seed %q", *seed)

	opts := []engine.Option{engine.WithRemoteTimeout(cfg.RemoteTimeout), engine.WithJourney(*journeyID)}
	if cfg.RemoteEnabled() && !*offline {
		orc, err := oracle.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			fmt.Printf("Error creating remote narrator: %v\n", err)
			os.Exit(1)
		}
		defer orc.Close()
		opts = append(opts, engine.WithRemote(orc), engine.WithRemoteEvents(*remoteEvents))
	}

	sess := engine.NewSession(cat, src, opts...)
	if err := tui.Run(sess, *chronicleDir); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
