package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/tatianab/pips-pilgrimage/internal/catalog"
	"github.com/tatianab/pips-pilgrimage/internal/config"
	"github.com/tatianab/pips-pilgrimage/internal/engine"
	"github.com/tatianab/pips-pilgrimage/internal/models"
	"github.com/tatianab/pips-pilgrimage/internal/oracle"
	"github.com/tatianab/pips-pilgrimage/internal/rng"
)

const maxTurns = 200

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	seed := flag.String("seed", "simulation", "seed text")
	runs := flag.Int("runs", 1, "number of runs to play")
	remote := flag.Bool("remote", false, "use the remote narrator when GEMINI_API_KEY is set")
	save := flag.Bool("save", false, "export a chronicle for every run")
	flag.Parse()

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load journeys: %v", err)
	}
	base, err := rng.FromText(*seed)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	opts := []engine.Option{engine.WithRemoteTimeout(cfg.RemoteTimeout)}
	if *remote && cfg.RemoteEnabled() {
		orc, err := oracle.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create remote narrator: %v", err)
		}
		defer orc.Close()
		opts = append(opts, engine.WithRemote(orc), engine.WithRemoteEvents(cfg.RemoteEvents))
	}

	wins := 0
	for run := 1; run <= *runs; run++ {
		// each run draws from its own stream so it replays alone
		sess := engine.NewSession(cat, base.Child(fmt.Sprintf("run:%d", run)), opts...)
		fmt.Printf("=== Run %d: %s ===\n", run, sess.Journey().Title)
		final := play(ctx, sess)
		if final.Status == models.StatusWin {
			wins++
		}
		fmt.Printf("Result: %s on day %d at mile %d\n\n", final.Status, final.Day, final.Distance)

		if *save && cfg.ChronicleDir != "" {
			chron := sess.Chronicle()
			path, err := chron.Save(cfg.ChronicleDir, final)
			if err != nil {
				log.Printf("Warning: failed to save chronicle: %v", err)
			} else {
				fmt.Printf("Chronicle saved to %s\n\n", path)
			}
		}
	}
	fmt.Printf("Won %d of %d runs\n", wins, *runs)

	if *save && cfg.ChronicleDir != "" {
		saved, err := models.ListChronicles(cfg.ChronicleDir)
		if err != nil {
			log.Printf("Warning: failed to list chronicles: %v", err)
			return
		}
		fmt.Printf("%d chronicles in %s\n", len(saved), cfg.ChronicleDir)
	}
}

func play(ctx context.Context, sess *engine.Session) models.GameState {
	s := sess.State()
	for turn := 1; turn <= maxTurns && !s.Status.Terminal(); turn++ {
		var err error
		if s.Status == models.StatusEvent {
			i := chooseOption(s)
			fmt.Printf("--- Day %d: %s -> %s\n", s.Day, s.ActiveEvent.Title, s.ActiveEvent.Options[i].Text)
			s, err = sess.PerformChoice(ctx, i)
		} else {
			a := chooseAction(s)
			fmt.Printf("--- Day %d: %s\n", s.Day, a)
			s, err = sess.PerformAction(ctx, a)
		}
		if err != nil {
			log.Fatalf("Turn failed: %v", err)
		}
		fmt.Println(s.LastMessage)
		fmt.Printf("Mile %d | Health %d Hunger %d Warmth %d Morale %d Fish %d\n", s.Distance, s.Health, s.Hunger, s.Warmth, s.Morale, s.Inventory.Fish)
	}
	return s
}

// chooseAction keeps every vital resource clear of the travel cost.
func chooseAction(s models.GameState) models.Action {
	switch {
	case s.Hunger < 40 && s.Inventory.Fish == 0:
		return models.ActionForage
	case s.Hunger < 40, s.Warmth < 35, s.Health < 30:
		return models.ActionRest
	default:
		return models.ActionTravel
	}
}

// chooseOption favours whatever the scarcest resource needs.
func chooseOption(s models.GameState) int {
	best, bestScore := 0, 0
	for i, opt := range s.ActiveEvent.Options {
		c := opt.StatChanges
		score := c.Health*need(s.Health) + c.Hunger*need(s.Hunger) + c.Warmth*need(s.Warmth) + c.Morale + c.Fish*10
		if i == 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func need(v int) int {
	if v < 40 {
		return 3
	}
	return 1
}
