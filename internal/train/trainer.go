// Package train implements population-based policy search over the driving
// environment. Each round samples candidate policies from a per-parameter
// gaussian, scores them over full episodes, keeps the top-K elites, and
// refits the gaussian to them. The optimizer knows nothing about the
// environment internals beyond the reset/step contract.
package train

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/openlaps/driftsim/internal/agent"
	"github.com/openlaps/driftsim/internal/driving"
)

// Config holds the search parameters.
type Config struct {
	Rounds      int     // Number of sample/score/refit rounds
	Population  int     // Candidates per round
	TopK        int     // Elites kept to refit the sampling distribution
	EpisodesPer int     // Episodes averaged per candidate score
	Seed        int64   // Seeds both the sampler and the evaluation envs
	InitStddev  float64 // Initial per-parameter sampling stddev
	MinStddev   float64 // Stddev floor, keeps exploration alive
	Env         driving.Config
}

// DefaultConfig returns a small but workable search configuration.
func DefaultConfig() Config {
	return Config{
		Rounds:      10,
		Population:  32,
		TopK:        5,
		EpisodesPer: 3,
		Seed:        1,
		InitStddev:  0.5,
		MinStddev:   0.05,
		Env:         driving.DefaultConfig(),
	}
}

func (c Config) validate() error {
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	}
	if c.Population < 2 {
		return fmt.Errorf("population must be at least 2, got %d", c.Population)
	}
	// A single elite has no sample stddev (n-1 = 0), which would collapse
	// the search distribution to NaN.
	if c.TopK < 2 || c.TopK > c.Population {
		return fmt.Errorf("top_k must be in [2, population], got %d", c.TopK)
	}
	if c.EpisodesPer <= 0 {
		return fmt.Errorf("episodes_per must be positive, got %d", c.EpisodesPer)
	}
	return nil
}

// EpisodeRecord summarises one evaluation episode.
type EpisodeRecord struct {
	Outcome     driving.Outcome
	TotalReward float64
	Steps       int
}

// EpisodeSink receives every episode the trainer runs. Implementations may
// persist them (the sqlite store does); a nil sink discards them.
type EpisodeSink interface {
	RecordEpisode(rec EpisodeRecord) error
}

// RoundSummary holds the results of one search round.
type RoundSummary struct {
	Round       int           `json:"round"`
	BestScore   float64       `json:"best_score"`
	MeanScore   float64       `json:"mean_score"`
	StddevScore float64       `json:"stddev_score"`
	Finishes    int           `json:"finishes"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Result is the outcome of a full search run.
type Result struct {
	Best      *agent.LinearAgent
	BestScore float64
	Rounds    []RoundSummary
}

// Trainer runs the search. Not safe for concurrent use.
type Trainer struct {
	cfg  Config
	rng  *rand.Rand
	sink EpisodeSink

	// Sampling distribution over flattened policy parameters.
	mean   []float64
	stddev []float64
}

// New creates a trainer with the given configuration and an optional
// episode sink.
func New(cfg Config, sink EpisodeSink) (*Trainer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	mean := make([]float64, agent.NumParams)
	stddev := make([]float64, agent.NumParams)
	for i := range stddev {
		stddev[i] = cfg.InitStddev
	}

	return &Trainer{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		sink:   sink,
		mean:   mean,
		stddev: stddev,
	}, nil
}

type candidate struct {
	params   []float64
	score    float64
	finishes int
}

// Run executes the configured number of rounds and returns the best policy
// found. The context cancels between candidates; a cancelled run returns
// the best result so far along with the context error.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	result := &Result{BestScore: math.Inf(-1)}

	for round := 1; round <= t.cfg.Rounds; round++ {
		start := time.Now()
		candidates := make([]candidate, 0, t.cfg.Population)

		for i := 0; i < t.cfg.Population; i++ {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			params := t.sample()
			score, finishes, err := t.evaluate(params)
			if err != nil {
				return result, fmt.Errorf("round %d candidate %d: %w", round, i, err)
			}
			candidates = append(candidates, candidate{params: params, score: score, finishes: finishes})
		}

		sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
		elites := candidates[:t.cfg.TopK]
		t.refit(elites)

		scores := make([]float64, len(candidates))
		finishes := 0
		for i, c := range candidates {
			scores[i] = c.score
			finishes += c.finishes
		}
		summary := RoundSummary{
			Round:       round,
			BestScore:   candidates[0].score,
			MeanScore:   stat.Mean(scores, nil),
			StddevScore: stat.StdDev(scores, nil),
			Finishes:    finishes,
			Elapsed:     time.Since(start),
		}
		result.Rounds = append(result.Rounds, summary)

		if candidates[0].score > result.BestScore {
			result.BestScore = candidates[0].score
			best, err := agent.LinearAgentFromParams(candidates[0].params)
			if err != nil {
				return result, err
			}
			result.Best = best
		}

		log.Printf("round %d/%d: best=%.2f mean=%.2f stddev=%.2f finishes=%d (%s)",
			round, t.cfg.Rounds, summary.BestScore, summary.MeanScore, summary.StddevScore,
			summary.Finishes, summary.Elapsed.Round(time.Millisecond))
	}

	return result, nil
}

// sample draws one parameter vector from the current gaussian.
func (t *Trainer) sample() []float64 {
	params := make([]float64, agent.NumParams)
	for i := range params {
		params[i] = t.mean[i] + t.rng.NormFloat64()*t.stddev[i]
	}
	return params
}

// evaluate scores a parameter vector as the mean total reward over the
// configured number of episodes, each on a freshly drawn track.
func (t *Trainer) evaluate(params []float64) (score float64, finishes int, err error) {
	policy, err := agent.LinearAgentFromParams(params)
	if err != nil {
		return 0, 0, err
	}

	env := driving.New(t.cfg.Env, t.rng.Int63())
	rewards := make([]float64, 0, t.cfg.EpisodesPer)
	for ep := 0; ep < t.cfg.EpisodesPer; ep++ {
		rec, err := RunEpisode(env, policy)
		if err != nil {
			return 0, 0, err
		}
		rewards = append(rewards, rec.TotalReward)
		if rec.Outcome == driving.OutcomeFinish {
			finishes++
		}
		if t.sink != nil {
			if err := t.sink.RecordEpisode(rec); err != nil {
				return 0, 0, fmt.Errorf("record episode: %w", err)
			}
		}
	}
	return stat.Mean(rewards, nil), finishes, nil
}

// refit recenters the sampling gaussian on the elite parameters, flooring
// the stddev so the search never collapses entirely.
func (t *Trainer) refit(elites []candidate) {
	col := make([]float64, len(elites))
	for p := 0; p < agent.NumParams; p++ {
		for i, e := range elites {
			col[i] = e.params[p]
		}
		t.mean[p] = stat.Mean(col, nil)
		sd := stat.StdDev(col, nil)
		if math.IsNaN(sd) || sd < t.cfg.MinStddev {
			sd = t.cfg.MinStddev
		}
		t.stddev[p] = sd
	}
}

// RunEpisode drives one full episode with the given policy and returns its
// summary. Shared by the trainer, the evaluator and the smoke check.
func RunEpisode(env *driving.Env, policy agent.Agent) (EpisodeRecord, error) {
	obs, _ := env.Reset()
	var total float64
	for {
		res, err := env.Step(policy.Act(obs))
		if err != nil {
			return EpisodeRecord{}, err
		}
		total += res.Reward
		obs = res.Observation
		if res.Terminated || res.Truncated {
			return EpisodeRecord{
				Outcome:     res.Info.Outcome,
				TotalReward: total,
				Steps:       env.Steps(),
			}, nil
		}
	}
}
