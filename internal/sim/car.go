package sim

import "math"

// CarConfig holds the kinematic parameters of the vehicle. Speeds are in
// map units per second, angles in radians.
type CarConfig struct {
	MaxSpeed    float64 // Forward speed limit; reverse is capped at half
	MaxAccel    float64 // Acceleration applied at full throttle
	Drag        float64 // Linear drag coefficient
	SteerRate   float64 // Yaw rate at full steering and full speed (rad/s)
	Length      float64 // Vehicle length, also the grace-zone scale
	FrontOffset float64 // Distance from center to the sensor/finish probe point
}

// DefaultCarConfig returns the default vehicle parameters.
func DefaultCarConfig() CarConfig {
	return CarConfig{
		MaxSpeed:    200,
		MaxAccel:    150,
		Drag:        1.8,
		SteerRate:   3.0,
		Length:      80,
		FrontOffset: 40,
	}
}

// Car is the kinematic vehicle state. It is mutated by Step and reset at
// episode start; the environment owns it exclusively.
type Car struct {
	Config CarConfig

	X       float64
	Y       float64
	Heading float64 // Radians, screen convention (y grows downwards)
	Speed   float64

	Throttle float64 // Commanded throttle in [-1, 1]
	Steering float64 // Commanded steering in [-1, 1]
}

// NewCar creates a car at the origin with the given configuration.
func NewCar(cfg CarConfig) *Car {
	return &Car{Config: cfg}
}

// Reset places the car at the given pose with zero speed and controls.
func (c *Car) Reset(x, y, heading float64) {
	c.X = x
	c.Y = y
	c.Heading = heading
	c.Speed = 0
	c.Throttle = 0
	c.Steering = 0
}

// SetControls sets the throttle and steering commands, clamping both to
// [-1, 1]. Clamping rather than rejecting keeps the integrator total over
// noisy policy outputs. NaN maps to zero: it would slip through the clamp
// comparisons and poison every downstream float.
func (c *Car) SetControls(throttle, steering float64) {
	c.Throttle = clamp(sanitize(throttle), -1, 1)
	c.Steering = clamp(sanitize(steering), -1, 1)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Step advances the vehicle state by dt seconds. Speed integrates throttle
// acceleration minus drag and clamps to [-MaxSpeed/2, MaxSpeed]. Steering
// authority scales with speed so the car cannot yaw in place; the response
// is monotonic in both throttle and steering magnitude.
func (c *Car) Step(dt float64) {
	cfg := c.Config

	c.Speed += c.Throttle * cfg.MaxAccel * dt

	// Multiplicative decay stays stable for any dt; the subtractive form
	// overshoots and flips the sign once Drag*dt exceeds 1.
	decay := 1 - cfg.Drag*dt
	if decay < 0 {
		decay = 0
	}
	c.Speed *= decay

	maxReverse := -cfg.MaxSpeed / 2
	if c.Speed > cfg.MaxSpeed {
		c.Speed = cfg.MaxSpeed
	} else if c.Speed < maxReverse {
		c.Speed = maxReverse
	}

	if math.Abs(c.Speed) > 1e-3 {
		steerScale := math.Abs(c.Speed) / cfg.MaxSpeed
		c.Heading += c.Steering * cfg.SteerRate * steerScale * dt
	}

	c.X += math.Cos(c.Heading) * c.Speed * dt
	c.Y += math.Sin(c.Heading) * c.Speed * dt
}

// Pos returns the car's center position.
func (c *Car) Pos() Point { return Point{c.X, c.Y} }

// FrontPoint returns the probe point ahead of the car center, used for
// sensor origin and finish-gate crossing.
func (c *Car) FrontPoint() Point {
	return c.Pos().Add(unitVector(c.Heading).Scale(c.Config.FrontOffset))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
