// Command checkenv runs a few random-policy episodes and prints their
// outcomes. It is a smoke test for the environment: a fresh checkout should
// produce complete episodes with bounded observations and no errors.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/openlaps/driftsim/internal/agent"
	"github.com/openlaps/driftsim/internal/config"
	"github.com/openlaps/driftsim/internal/driving"
	"github.com/openlaps/driftsim/internal/train"
)

var (
	episodes   = flag.Int("episodes", 5, "Number of random episodes to run")
	seed       = flag.Int64("seed", 1, "Seed for the track generator and policy")
	configFile = flag.String("config", "driftsim.yaml", "Optional YAML config overriding simulation defaults")
)

func main() {
	flag.Parse()

	cfgFile, err := config.Load(*configFile, true)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := driving.DefaultConfig()
	if err := cfgFile.ApplyEnv(&cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	env := driving.New(cfg, *seed)
	policy := agent.NewRandomAgent(*seed)

	fmt.Printf("running %d random episodes (seed=%d, max_steps=%d)\n", *episodes, *seed, cfg.MaxSteps)
	for ep := 0; ep < *episodes; ep++ {
		rec, err := train.RunEpisode(env, policy)
		if err != nil {
			log.Fatalf("episode %d failed: %v", ep, err)
		}
		fmt.Printf("episode %d: outcome=%-9s steps=%4d reward=%8.2f\n",
			ep, rec.Outcome, rec.Steps, rec.TotalReward)
	}
	fmt.Println("environment check passed")
}
