// Package config loads optional YAML overrides for the simulation and
// training defaults. Fields left out of the file keep their default values,
// so a config file only needs to name what it changes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openlaps/driftsim/internal/driving"
	"github.com/openlaps/driftsim/internal/train"
)

// File is the on-disk configuration document. Every field is a pointer so
// that absent keys are distinguishable from explicit zeros.
type File struct {
	Track   TrackSection   `yaml:"track"`
	Car     CarSection     `yaml:"car"`
	Sensors SensorSection  `yaml:"sensors"`
	Rewards RewardSection  `yaml:"rewards"`
	Env     EnvSection     `yaml:"env"`
	Trainer TrainerSection `yaml:"trainer"`
}

// TrackSection overrides track generation parameters.
type TrackSection struct {
	MapWidth     *float64 `yaml:"map_width"`
	MapHeight    *float64 `yaml:"map_height"`
	Margin       *float64 `yaml:"margin"`
	Points       *int     `yaml:"points"`
	AmplitudeMin *float64 `yaml:"amplitude_min"`
	AmplitudeMax *float64 `yaml:"amplitude_max"`
	WavesMin     *float64 `yaml:"waves_min"`
	WavesMax     *float64 `yaml:"waves_max"`
	RoadWidth    *float64 `yaml:"road_width"`
}

// CarSection overrides vehicle parameters.
type CarSection struct {
	MaxSpeed  *float64 `yaml:"max_speed"`
	MaxAccel  *float64 `yaml:"max_accel"`
	Drag      *float64 `yaml:"drag"`
	SteerRate *float64 `yaml:"steer_rate"`
}

// SensorSection overrides the ray fan geometry.
type SensorSection struct {
	NumRays    *int     `yaml:"num_rays"`
	FOVDegrees *float64 `yaml:"fov_degrees"`
	MaxRange   *float64 `yaml:"max_range"`
}

// RewardSection overrides the reward rule parameters.
type RewardSection struct {
	Finish          *float64 `yaml:"finish"`
	OffTrack        *float64 `yaml:"off_track"`
	Grace           *float64 `yaml:"grace"`
	LowSpeedPenalty *float64 `yaml:"low_speed_penalty"`
	LowSpeedMin     *float64 `yaml:"low_speed_min"`
	ProgressGain    *float64 `yaml:"progress_gain"`
	GraceFactor     *float64 `yaml:"grace_factor"`
}

// EnvSection overrides episode-level settings.
type EnvSection struct {
	DT         *float64 `yaml:"dt"`
	MaxSteps   *int     `yaml:"max_steps"`
	SpawnAhead *float64 `yaml:"spawn_ahead"`
}

// TrainerSection overrides the search configuration.
type TrainerSection struct {
	Rounds      *int     `yaml:"rounds"`
	Population  *int     `yaml:"population"`
	TopK        *int     `yaml:"top_k"`
	EpisodesPer *int     `yaml:"episodes_per"`
	Seed        *int64   `yaml:"seed"`
	InitStddev  *float64 `yaml:"init_stddev"`
	MinStddev   *float64 `yaml:"min_stddev"`
}

// Load parses the YAML file at path. A missing path is not an error when
// optional is true; it yields an empty File.
func Load(path string, optional bool) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &f, nil
}

// ApplyEnv overlays the file's simulation sections onto cfg. The ray count
// is pinned: policies consume a fixed-size observation, so a num_rays
// override that changes the observation arity is rejected rather than
// silently truncated downstream.
func (f *File) ApplyEnv(cfg *driving.Config) error {
	setF(&cfg.Track.MapWidth, f.Track.MapWidth)
	setF(&cfg.Track.MapHeight, f.Track.MapHeight)
	setF(&cfg.Track.Margin, f.Track.Margin)
	setI(&cfg.Track.Points, f.Track.Points)
	setF(&cfg.Track.AmplitudeMin, f.Track.AmplitudeMin)
	setF(&cfg.Track.AmplitudeMax, f.Track.AmplitudeMax)
	setF(&cfg.Track.WavesMin, f.Track.WavesMin)
	setF(&cfg.Track.WavesMax, f.Track.WavesMax)
	setF(&cfg.Track.RoadWidth, f.Track.RoadWidth)

	setF(&cfg.Car.MaxSpeed, f.Car.MaxSpeed)
	setF(&cfg.Car.MaxAccel, f.Car.MaxAccel)
	setF(&cfg.Car.Drag, f.Car.Drag)
	setF(&cfg.Car.SteerRate, f.Car.SteerRate)

	setI(&cfg.Sensors.NumRays, f.Sensors.NumRays)
	setF(&cfg.Sensors.FOVDegrees, f.Sensors.FOVDegrees)
	setF(&cfg.Sensors.MaxRange, f.Sensors.MaxRange)

	setF(&cfg.Rewards.Finish, f.Rewards.Finish)
	setF(&cfg.Rewards.OffTrack, f.Rewards.OffTrack)
	setF(&cfg.Rewards.Grace, f.Rewards.Grace)
	setF(&cfg.Rewards.LowSpeedPenalty, f.Rewards.LowSpeedPenalty)
	setF(&cfg.Rewards.LowSpeedMin, f.Rewards.LowSpeedMin)
	setF(&cfg.Rewards.ProgressGain, f.Rewards.ProgressGain)
	setF(&cfg.Rewards.GraceFactor, f.Rewards.GraceFactor)

	setF(&cfg.DT, f.Env.DT)
	setI(&cfg.MaxSteps, f.Env.MaxSteps)
	setF(&cfg.SpawnAhead, f.Env.SpawnAhead)

	if cfg.Sensors.NumRays != driving.ObservationSize-1 {
		return fmt.Errorf("num_rays must be %d: the observation is %d ray distances plus speed",
			driving.ObservationSize-1, driving.ObservationSize-1)
	}
	return nil
}

// ApplyTrainer overlays the file's trainer section onto cfg. The embedded
// environment config is overlaid too.
func (f *File) ApplyTrainer(cfg *train.Config) error {
	setI(&cfg.Rounds, f.Trainer.Rounds)
	setI(&cfg.Population, f.Trainer.Population)
	setI(&cfg.TopK, f.Trainer.TopK)
	setI(&cfg.EpisodesPer, f.Trainer.EpisodesPer)
	if f.Trainer.Seed != nil {
		cfg.Seed = *f.Trainer.Seed
	}
	setF(&cfg.InitStddev, f.Trainer.InitStddev)
	setF(&cfg.MinStddev, f.Trainer.MinStddev)
	return f.ApplyEnv(&cfg.Env)
}

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setI(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
