// Command train runs the policy search, records every episode to the run
// database, and saves the best policy as a zip artifact.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/openlaps/driftsim/internal/agent"
	"github.com/openlaps/driftsim/internal/config"
	"github.com/openlaps/driftsim/internal/store"
	"github.com/openlaps/driftsim/internal/train"
)

var (
	dbFile     = flag.String("db", "driftsim.db", "Path to the run database")
	outFile    = flag.String("out", "policy.zip", "Path for the trained policy artifact")
	rounds     = flag.Int("rounds", 0, "Override the number of search rounds (0 keeps the config value)")
	seed       = flag.Int64("seed", 0, "Override the search seed (0 keeps the config value)")
	configFile = flag.String("config", "driftsim.yaml", "Optional YAML config overriding defaults")
)

func main() {
	flag.Parse()

	cfgFile, err := config.Load(*configFile, true)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := train.DefaultConfig()
	if err := cfgFile.ApplyTrainer(&cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if *rounds > 0 {
		cfg.Rounds = *rounds
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	db, err := store.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	runID, err := db.CreateRun("train", configJSON)
	if err != nil {
		log.Fatalf("failed to create run: %v", err)
	}
	log.Printf("training run %s: %d rounds, population %d, seed %d", runID, cfg.Rounds, cfg.Population, cfg.Seed)

	trainer, err := train.New(cfg, store.NewRunSink(db, runID))
	if err != nil {
		log.Fatalf("invalid training config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := trainer.Run(ctx)
	if err != nil {
		if result == nil || result.Best == nil {
			log.Fatalf("training failed: %v", err)
		}
		log.Printf("training interrupted: %v (saving best policy so far)", err)
	}

	if err := agent.SaveArtifact(*outFile, result.Best, runID, result.BestScore); err != nil {
		log.Fatalf("failed to save policy artifact: %v", err)
	}

	summary, err := db.Summary(runID)
	if err != nil {
		log.Fatalf("failed to summarise run: %v", err)
	}
	fmt.Printf("run %s complete: best score %.2f over %d rounds\n", runID, result.BestScore, len(result.Rounds))
	fmt.Printf("episodes=%d finishes=%d off_tracks=%d timeouts=%d mean_reward=%.2f\n",
		summary.Episodes, summary.Finishes, summary.OffTracks, summary.Timeouts, summary.MeanReward)
	fmt.Printf("policy saved to %s\n", *outFile)
}
