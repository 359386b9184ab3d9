package sim

import "math"

// SensorConfig describes the forward-facing ray fan.
type SensorConfig struct {
	NumRays     int     // Number of rays in the fan
	FOVDegrees  float64 // Total fan angle, centered on the heading
	MaxRange    float64 // Rays are truncated at this distance
	FrontOffset float64 // Ray origin offset ahead of the car center
	DangerDist  float64 // Display threshold for "close" hits (render only)
}

// DefaultSensorConfig returns the standard 7-ray, 120 degree fan.
func DefaultSensorConfig() SensorConfig {
	return SensorConfig{
		NumRays:     7,
		FOVDegrees:  120,
		MaxRange:    220,
		FrontOffset: 40,
		DangerDist:  50,
	}
}

// Ray is the result of casting a single sensor ray.
type Ray struct {
	Start    Point
	End      Point   // Hit point, or the truncated ray end when nothing was hit
	Distance float64 // Distance to the hit, or MaxRange on a miss
	Hit      bool
}

// Reading is one full sweep of the sensor fan. Readings are recomputed every
// step and never persisted.
type Reading struct {
	Rays     []Ray
	maxRange float64
}

// Normalized returns the ray distances divided by the maximum range, each in
// [0, 1]. A ray with no intersection reports exactly 1.
func (r Reading) Normalized() []float64 {
	out := make([]float64, len(r.Rays))
	for i, ray := range r.Rays {
		out[i] = ray.Distance / r.maxRange
	}
	return out
}

// SensorSuite casts a fixed fan of rays against the track borders. The suite
// is stateless: Cast is deterministic given pose and track.
type SensorSuite struct {
	Config SensorConfig
}

// NewSensorSuite creates a suite with the given configuration.
func NewSensorSuite(cfg SensorConfig) *SensorSuite {
	return &SensorSuite{Config: cfg}
}

// rayDirections returns unit direction vectors for the fan, spaced evenly
// across the field of view and centered on heading.
func (s *SensorSuite) rayDirections(heading float64) []Point {
	cfg := s.Config
	if cfg.NumRays <= 1 {
		return []Point{unitVector(heading)}
	}

	halfFOV := cfg.FOVDegrees * math.Pi / 180 / 2
	step := 2 * halfFOV / float64(cfg.NumRays-1)
	dirs := make([]Point, cfg.NumRays)
	for i := range dirs {
		dirs[i] = unitVector(heading - halfFOV + step*float64(i))
	}
	return dirs
}

// Cast sweeps the fan from the given pose against the track borders. Each
// ray reports the nearest intersection with either border polyline, or the
// maximum range when nothing is hit.
func (s *SensorSuite) Cast(pos Point, heading float64, track *Track) Reading {
	cfg := s.Config
	origin := pos.Add(unitVector(heading).Scale(cfg.FrontOffset))
	segments := track.BorderSegments()

	rays := make([]Ray, 0, cfg.NumRays)
	for _, dir := range s.rayDirections(heading) {
		closest := cfg.MaxRange
		var closestHit Point
		hit := false

		for _, seg := range segments {
			d, p, ok := raySegmentIntersection(origin, dir, seg, cfg.MaxRange)
			if ok && d < closest {
				closest = d
				closestHit = p
				hit = true
			}
		}

		end := closestHit
		if !hit {
			end = origin.Add(dir.Scale(cfg.MaxRange))
		}
		rays = append(rays, Ray{Start: origin, End: end, Distance: closest, Hit: hit})
	}

	return Reading{Rays: rays, maxRange: cfg.MaxRange}
}
