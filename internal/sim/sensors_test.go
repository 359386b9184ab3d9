package sim

import (
	"math"
	"testing"
)

func TestRayDirectionsSpanFan(t *testing.T) {
	suite := NewSensorSuite(DefaultSensorConfig())
	dirs := suite.rayDirections(0)

	if len(dirs) != 7 {
		t.Fatalf("got %d rays, want 7", len(dirs))
	}

	// First and last rays sit at +-60 degrees around the heading; the middle
	// ray points straight ahead.
	wantFirst := -60 * math.Pi / 180
	if got := math.Atan2(dirs[0].Y, dirs[0].X); math.Abs(got-wantFirst) > 1e-9 {
		t.Errorf("first ray angle = %f, want %f", got, wantFirst)
	}
	if got := math.Atan2(dirs[3].Y, dirs[3].X); math.Abs(got) > 1e-9 {
		t.Errorf("middle ray angle = %f, want 0", got)
	}
	if got := math.Atan2(dirs[6].Y, dirs[6].X); math.Abs(got+wantFirst) > 1e-9 {
		t.Errorf("last ray angle = %f, want %f", got, -wantFirst)
	}
}

func TestSingleRayFallback(t *testing.T) {
	cfg := DefaultSensorConfig()
	cfg.NumRays = 1
	suite := NewSensorSuite(cfg)
	dirs := suite.rayDirections(math.Pi / 2)
	if len(dirs) != 1 {
		t.Fatalf("got %d rays, want 1", len(dirs))
	}
	if math.Abs(dirs[0].X) > 1e-9 || math.Abs(dirs[0].Y-1) > 1e-9 {
		t.Errorf("single ray direction = %+v, want (0, 1)", dirs[0])
	}
}

func TestCastNormalizedBounds(t *testing.T) {
	track := straightTrack(t, 40)
	suite := NewSensorSuite(DefaultSensorConfig())

	poses := []struct {
		name    string
		pos     Point
		heading float64
	}{
		{"mid_track_forward", Point{20, 100}, 0},
		{"angled", Point{30, 95}, 0.4},
		{"near_border", Point{50, 117}, 0},
		{"reversed", Point{80, 100}, math.Pi},
	}

	for _, pose := range poses {
		t.Run(pose.name, func(t *testing.T) {
			reading := suite.Cast(pose.pos, pose.heading, track)
			norm := reading.Normalized()
			if len(norm) != 7 {
				t.Fatalf("got %d normalized distances, want 7", len(norm))
			}
			for i, v := range norm {
				if v < 0 || v > 1 {
					t.Errorf("ray %d normalized to %f, outside [0, 1]", i, v)
				}
			}
		})
	}
}

func TestCastMissNormalizesToOne(t *testing.T) {
	track := straightTrack(t, 40)
	suite := NewSensorSuite(DefaultSensorConfig())

	// Far from the track every ray runs out of range.
	reading := suite.Cast(Point{50, 5000}, 0, track)
	for i, ray := range reading.Rays {
		if ray.Hit {
			t.Errorf("ray %d reported a hit far from the track", i)
		}
		if ray.Distance != suite.Config.MaxRange {
			t.Errorf("ray %d distance = %f, want max range %f", i, ray.Distance, suite.Config.MaxRange)
		}
	}
	for i, v := range reading.Normalized() {
		if v != 1.0 {
			t.Errorf("ray %d normalized to %f, want exactly 1.0", i, v)
		}
	}
}

func TestCastDetectsNearBorder(t *testing.T) {
	track := straightTrack(t, 40)
	cfg := DefaultSensorConfig()
	cfg.FrontOffset = 0
	suite := NewSensorSuite(cfg)

	// Heading straight at the left border (y=120) from the centerline: the
	// middle ray must hit at the lateral half width.
	reading := suite.Cast(Point{50, 100}, math.Pi/2, track)
	mid := reading.Rays[3]
	if !mid.Hit {
		t.Fatal("middle ray missed the border it points at")
	}
	if math.Abs(mid.Distance-20) > 1e-6 {
		t.Errorf("middle ray distance = %f, want 20", mid.Distance)
	}
}

func TestCastIsStateless(t *testing.T) {
	track := straightTrack(t, 40)
	suite := NewSensorSuite(DefaultSensorConfig())

	a := suite.Cast(Point{40, 102}, 0.2, track)
	// An unrelated cast in between must not affect the repeat.
	suite.Cast(Point{10, 90}, -1.0, track)
	b := suite.Cast(Point{40, 102}, 0.2, track)

	for i := range a.Rays {
		if a.Rays[i].Distance != b.Rays[i].Distance {
			t.Fatalf("ray %d distance changed across identical casts: %f vs %f", i, a.Rays[i].Distance, b.Rays[i].Distance)
		}
	}
}
