// Command eval loads a trained policy artifact, runs it for a number of
// episodes, records the results, and optionally renders the best episode's
// trajectory to a PNG.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/openlaps/driftsim/internal/agent"
	"github.com/openlaps/driftsim/internal/config"
	"github.com/openlaps/driftsim/internal/driving"
	"github.com/openlaps/driftsim/internal/render"
	"github.com/openlaps/driftsim/internal/sim"
	"github.com/openlaps/driftsim/internal/store"
)

var (
	policyFile = flag.String("policy", "policy.zip", "Path to the trained policy artifact")
	dbFile     = flag.String("db", "", "Optional run database to record results into")
	episodes   = flag.Int("episodes", 20, "Number of evaluation episodes")
	seed       = flag.Int64("seed", 1, "Seed for the evaluation tracks")
	pngFile    = flag.String("png", "", "Optional path to render the best episode's trajectory")
	configFile = flag.String("config", "driftsim.yaml", "Optional YAML config overriding simulation defaults")
)

func main() {
	flag.Parse()

	policy, manifest, err := agent.LoadArtifact(*policyFile)
	if err != nil {
		log.Fatalf("failed to load policy: %v", err)
	}
	log.Printf("loaded %s policy from run %s (training score %.2f)",
		manifest.PolicyType, manifest.RunID, manifest.Score)

	cfgFile, err := config.Load(*configFile, true)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := driving.DefaultConfig()
	if err := cfgFile.ApplyEnv(&cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	var db *store.Store
	var runID string
	if *dbFile != "" {
		db, err = store.Open(*dbFile)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		runID, err = db.CreateRun("eval", nil)
		if err != nil {
			log.Fatalf("failed to create run: %v", err)
		}
	}

	env := driving.New(cfg, *seed)
	var total float64
	finishes := 0
	bestReward := math.Inf(-1)
	var bestTrack *sim.Track
	var bestPath []sim.Point

	for ep := 0; ep < *episodes; ep++ {
		reward, outcome, steps, path := runEpisode(env, policy)
		total += reward
		if outcome == driving.OutcomeFinish {
			finishes++
		}
		if reward > bestReward {
			bestReward = reward
			bestTrack = env.Track()
			bestPath = path
		}
		fmt.Printf("episode %2d: outcome=%-9s steps=%4d reward=%8.2f\n", ep, outcome, steps, reward)

		if db != nil {
			if err := db.RecordEpisode(runID, ep, string(outcome), reward, steps); err != nil {
				log.Fatalf("failed to record episode: %v", err)
			}
		}
	}

	fmt.Printf("mean reward %.2f, finish rate %.0f%% over %d episodes\n",
		total/float64(*episodes), 100*float64(finishes)/float64(*episodes), *episodes)

	if *pngFile != "" && bestTrack != nil {
		if err := render.TrajectoryPNG(*pngFile, bestTrack, bestPath); err != nil {
			log.Fatalf("failed to render trajectory: %v", err)
		}
		fmt.Printf("best trajectory rendered to %s\n", *pngFile)
	}
}

// runEpisode plays one full episode and collects the car's path for
// rendering.
func runEpisode(env *driving.Env, policy agent.Agent) (reward float64, outcome driving.Outcome, steps int, path []sim.Point) {
	obs, _ := env.Reset()
	car := env.Car()
	path = append(path, sim.Point{X: car.X, Y: car.Y})

	for {
		result, err := env.Step(policy.Act(obs))
		if err != nil {
			log.Fatalf("step failed: %v", err)
		}
		obs = result.Observation
		reward += result.Reward
		car = env.Car()
		path = append(path, sim.Point{X: car.X, Y: car.Y})

		if result.Terminated || result.Truncated {
			return reward, result.Info.Outcome, env.Steps(), path
		}
	}
}
