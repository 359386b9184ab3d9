// Package driving composes the track generator, sensor suite and vehicle
// kinematics into an episodic reset/step environment. The environment owns
// all mutable episode state; collaborators (trainer, renderer, dashboard)
// only read snapshots and feed actions.
package driving

import (
	"fmt"
	"math"

	"github.com/openlaps/driftsim/internal/sim"
)

// ObservationSize is the fixed observation dimension: seven normalized
// sensor distances plus the normalized speed.
const ObservationSize = 8

// ActionSize is the fixed action dimension: throttle and steering.
const ActionSize = 2

// Config holds the full environment configuration.
type Config struct {
	Track   sim.TrackConfig
	Car     sim.CarConfig
	Sensors sim.SensorConfig
	Rewards RewardConfig

	DT         float64 // Simulation timestep in seconds
	MaxSteps   int     // Episode step cap; reaching it truncates with a timeout
	SpawnAhead float64 // Spawn distance along the initial centerline heading
}

// RewardConfig holds the reward rule parameters. The grace and progress
// values are policy choices, not derived constants; the defaults below are
// the documented baseline.
type RewardConfig struct {
	Finish          float64 // Terminal reward for crossing the finish gate
	OffTrack        float64 // Terminal penalty for leaving the road
	Grace           float64 // Per-step reward while off-road near the finish
	LowSpeedPenalty float64 // Per-step penalty for crawling on-road
	LowSpeedMin     float64 // Speed below which the crawl penalty applies
	ProgressGain    float64 // Reward per unit of centerline progress
	GraceFactor     float64 // Grace-zone radius in car lengths around the finish center
}

// DefaultConfig returns the standard environment configuration.
func DefaultConfig() Config {
	return Config{
		Track:   sim.DefaultTrackConfig(),
		Car:     sim.DefaultCarConfig(),
		Sensors: sim.DefaultSensorConfig(),
		Rewards: RewardConfig{
			Finish:          150,
			OffTrack:        -30,
			Grace:           0.05,
			LowSpeedPenalty: -0.1,
			LowSpeedMin:     10,
			ProgressGain:    0.05,
			GraceFactor:     1.0,
		},
		DT:         1.0 / 60.0,
		MaxSteps:   1500,
		SpawnAhead: 60,
	}
}

// Info carries per-step metadata back to the caller.
type Info struct {
	Outcome Outcome `json:"outcome"`
}

// StepResult is the full result of one environment step.
type StepResult struct {
	Observation []float64
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        Info
}

// CarState is a read-only snapshot of the vehicle, exposed for rendering
// and streaming.
type CarState struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Speed   float64 `json:"speed"`
}

// Env is the driving environment. It is single-threaded and step-driven:
// callers own the loop and must not share one Env across goroutines.
type Env struct {
	cfg Config

	gen     *sim.TrackGenerator
	car     *sim.Car
	sensors *sim.SensorSuite

	track        *sim.Track
	steps        int
	lastReading  sim.Reading
	lastProgress float64
	done         bool
}

// New creates an environment with the given configuration and seed. The
// seed drives track generation only; stepping itself is deterministic.
func New(cfg Config, seed int64) *Env {
	return &Env{
		cfg:     cfg,
		gen:     sim.NewTrackGenerator(cfg.Track, seed),
		car:     sim.NewCar(cfg.Car),
		sensors: sim.NewSensorSuite(cfg.Sensors),
	}
}

// Config returns the environment configuration.
func (e *Env) Config() Config { return e.cfg }

// Reset generates a fresh track, spawns the car on the centerline facing
// along it, and returns the initial observation. Each call draws a new
// random track; consecutive resets are independent draws.
func (e *Env) Reset() ([]float64, Info) {
	e.track = e.gen.Generate()
	e.steps = 0
	e.done = false

	start := e.track.Centerline[0]
	next := e.track.Centerline[1]
	dir := next.Sub(start)
	heading := math.Atan2(dir.Y, dir.X)
	spawn := start.Add(sim.Point{X: math.Cos(heading), Y: math.Sin(heading)}.Scale(e.cfg.SpawnAhead))
	e.car.Reset(spawn.X, spawn.Y, heading)

	e.lastReading = e.sensors.Cast(e.car.Pos(), e.car.Heading, e.track)
	e.lastProgress = e.track.Progress(e.car.Pos())
	return e.observation(), Info{Outcome: OutcomeRunning}
}

// Step validates and clamps the action, advances the kinematics by one
// timestep, recomputes the sensors, and evaluates the reward rules in
// priority order. Returns an error if Reset has not been called or the
// action has the wrong arity; out-of-range action components are clamped,
// not rejected, so training stays robust to numerical noise.
func (e *Env) Step(action []float64) (StepResult, error) {
	if e.track == nil {
		return StepResult{}, fmt.Errorf("step called before reset")
	}
	if e.done {
		return StepResult{}, fmt.Errorf("step called on a finished episode; call reset")
	}
	if len(action) != ActionSize {
		return StepResult{}, fmt.Errorf("action must have %d components, got %d", ActionSize, len(action))
	}

	e.car.SetControls(action[0], action[1])
	frontBefore := e.car.FrontPoint()
	e.car.Step(e.cfg.DT)
	frontAfter := e.car.FrontPoint()

	e.lastReading = e.sensors.Cast(e.car.Pos(), e.car.Heading, e.track)
	e.steps++

	progress := e.track.Progress(e.car.Pos())
	facts := stepFacts{
		finishCrossed: e.track.CrossedFinish(frontBefore, frontAfter),
		onRoad:        e.track.OnRoad(e.car.Pos()),
		nearFinish:    e.car.Pos().Dist(e.track.FinishCenter()) <= e.cfg.Rewards.GraceFactor*e.cfg.Car.Length,
		lowSpeed:      math.Abs(e.car.Speed) < e.cfg.Rewards.LowSpeedMin,
		progressDelta: progress - e.lastProgress,
	}
	e.lastProgress = progress

	v := evaluate(facts, e.cfg.Rewards)

	truncated := false
	if !v.Terminal && e.steps >= e.cfg.MaxSteps {
		truncated = true
		v.Outcome = OutcomeTimeout
	}
	e.done = v.Terminal || truncated

	return StepResult{
		Observation: e.observation(),
		Reward:      v.Reward,
		Terminated:  v.Terminal,
		Truncated:   truncated,
		Info:        Info{Outcome: v.Outcome},
	}, nil
}

// observation concatenates the normalized sensor distances with the
// normalized speed. Recomputed every call; never retained.
func (e *Env) observation() []float64 {
	obs := make([]float64, 0, ObservationSize)
	obs = append(obs, e.lastReading.Normalized()...)
	speed := e.car.Speed / e.cfg.Car.MaxSpeed
	if speed < 0 {
		speed = 0
	} else if speed > 1 {
		speed = 1
	}
	return append(obs, speed)
}

// Track returns the current episode's track, or nil before the first reset.
func (e *Env) Track() *sim.Track { return e.track }

// Car returns a snapshot of the vehicle state.
func (e *Env) Car() CarState {
	return CarState{X: e.car.X, Y: e.car.Y, Heading: e.car.Heading, Speed: e.car.Speed}
}

// LastReading returns the sensor sweep from the most recent reset or step.
func (e *Env) LastReading() sim.Reading { return e.lastReading }

// Steps returns the number of steps taken this episode.
func (e *Env) Steps() int { return e.steps }
