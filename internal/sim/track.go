// Package sim implements the 2D driving simulation: procedural track
// generation, kinematic vehicle integration, and the ray-casting sensor
// suite. The package is deterministic given an explicit random source and
// holds no global state.
package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// TrackConfig holds the generation parameters for procedural tracks.
// Distances are in map units (pixels at render time).
type TrackConfig struct {
	MapWidth  float64 // Renderable area width
	MapHeight float64 // Renderable area height
	Margin    float64 // Minimum distance kept between centerline and map edge

	XStart float64 // Centerline start x
	XEnd   float64 // Centerline end x
	MidY   float64 // Vertical midpoint of the sinusoid
	Points int     // Number of centerline samples

	AmplitudeMin float64 // Lower bound for the sinusoid amplitude draw
	AmplitudeMax float64 // Upper bound for the sinusoid amplitude draw
	WavesMin     float64 // Lower bound for the wave count draw
	WavesMax     float64 // Upper bound for the wave count draw

	RoadWidth float64 // Full road width between the two borders
}

// DefaultTrackConfig returns the default track generation configuration
// for an 800x600 map.
func DefaultTrackConfig() TrackConfig {
	return TrackConfig{
		MapWidth:     800,
		MapHeight:    600,
		Margin:       80,
		XStart:       80,
		XEnd:         720,
		MidY:         320,
		Points:       80,
		AmplitudeMin: 70,
		AmplitudeMax: 130,
		WavesMin:     0.6,
		WavesMax:     1.2,
		RoadWidth:    110,
	}
}

// TrackGenerator produces procedural tracks from an explicit, seedable
// random source. Episodes are reproducible: two generators built from the
// same seed emit the same sequence of tracks.
type TrackGenerator struct {
	cfg TrackConfig
	rng *rand.Rand
}

// NewTrackGenerator creates a generator with the given configuration and seed.
func NewTrackGenerator(cfg TrackConfig, seed int64) *TrackGenerator {
	return &TrackGenerator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// Config returns the generator's configuration.
func (g *TrackGenerator) Config() TrackConfig { return g.cfg }

// Generate draws amplitude and wave count and builds a new track. The
// returned track is immutable for the remainder of the episode.
func (g *TrackGenerator) Generate() *Track {
	cfg := g.cfg
	amplitude := cfg.AmplitudeMin + g.rng.Float64()*(cfg.AmplitudeMax-cfg.AmplitudeMin)
	waves := cfg.WavesMin + g.rng.Float64()*(cfg.WavesMax-cfg.WavesMin)

	centerline := make([]Point, cfg.Points)
	for i := 0; i < cfg.Points; i++ {
		t := float64(i) / float64(cfg.Points-1)
		x := cfg.XStart + (cfg.XEnd-cfg.XStart)*t
		y := cfg.MidY + amplitude*math.Sin(2*math.Pi*waves*t)
		y = math.Max(cfg.Margin, math.Min(cfg.MapHeight-cfg.Margin, y))
		centerline[i] = Point{x, y}
	}

	track, err := NewTrack(centerline, cfg.RoadWidth)
	if err != nil {
		// Unreachable with Points >= 2; config validation belongs to callers.
		panic(fmt.Sprintf("sim: generated invalid track: %v", err))
	}
	return track
}

// Track is a centerline-based track: the generated centerline, the derived
// left/right border polylines, and the finish gate joining the last border
// points. All fields are computed once at construction.
type Track struct {
	Centerline []Point
	RoadWidth  float64

	left    []Point
	right   []Point
	borders []Segment // left then right border segments, cached for ray casting

	// arcLen[i] is the centerline arc length from the start to point i.
	arcLen []float64
}

// NewTrack builds a track from a centerline. The centerline must contain at
// least two points.
func NewTrack(centerline []Point, roadWidth float64) (*Track, error) {
	if len(centerline) < 2 {
		return nil, fmt.Errorf("centerline must contain at least two points, got %d", len(centerline))
	}

	t := &Track{
		Centerline: centerline,
		RoadWidth:  roadWidth,
	}
	t.computeBorders()
	t.computeArcLengths()
	return t, nil
}

// computeBorders offsets the centerline along per-vertex normals by half the
// road width. Interior vertices use the averaged normal of the two adjacent
// segments so the borders stay parallel through bends.
func (t *Track) computeBorders() {
	n := len(t.Centerline)
	segNormals := make([]Point, n-1)
	for i := 0; i < n-1; i++ {
		d := t.Centerline[i+1].Sub(t.Centerline[i])
		angle := math.Atan2(d.Y, d.X) + math.Pi/2
		segNormals[i] = Point{math.Cos(angle), math.Sin(angle)}
	}

	half := t.RoadWidth / 2
	t.left = make([]Point, n)
	t.right = make([]Point, n)
	for i, p := range t.Centerline {
		var normal Point
		switch {
		case i == 0:
			normal = segNormals[0]
		case i == n-1:
			normal = segNormals[n-2]
		default:
			normal = segNormals[i-1].Add(segNormals[i])
			if l := normal.Norm(); l != 0 {
				normal = normal.Scale(1 / l)
			}
		}
		t.left[i] = p.Add(normal.Scale(half))
		t.right[i] = p.Sub(normal.Scale(half))
	}

	t.borders = make([]Segment, 0, 2*(n-1))
	for _, border := range [][]Point{t.left, t.right} {
		for i := 0; i < len(border)-1; i++ {
			t.borders = append(t.borders, Segment{border[i], border[i+1]})
		}
	}
}

func (t *Track) computeArcLengths() {
	t.arcLen = make([]float64, len(t.Centerline))
	for i := 1; i < len(t.Centerline); i++ {
		t.arcLen[i] = t.arcLen[i-1] + t.Centerline[i].Dist(t.Centerline[i-1])
	}
}

// Borders returns the left and right border polylines.
func (t *Track) Borders() (left, right []Point) { return t.left, t.right }

// BorderSegments returns the combined border segments of both polylines.
func (t *Track) BorderSegments() []Segment { return t.borders }

// Length returns the total centerline arc length.
func (t *Track) Length() float64 { return t.arcLen[len(t.arcLen)-1] }

// FinishGate returns the segment joining the final left and right border
// points. Crossing this gate ends the episode with a finish.
func (t *Track) FinishGate() Segment {
	return Segment{t.left[len(t.left)-1], t.right[len(t.right)-1]}
}

// FinishCenter returns the midpoint of the finish gate.
func (t *Track) FinishCenter() Point {
	gate := t.FinishGate()
	return Point{(gate.A.X + gate.B.X) / 2, (gate.A.Y + gate.B.Y) / 2}
}

// LateralOffset returns the distance from p to the nearest point on the
// centerline polyline.
func (t *Track) LateralOffset(p Point) float64 {
	best := math.Inf(1)
	for i := 0; i < len(t.Centerline)-1; i++ {
		d, _ := pointSegmentDistance(p, Segment{t.Centerline[i], t.Centerline[i+1]})
		if d < best {
			best = d
		}
	}
	return best
}

// OnRoad reports whether p lies within half the road width of the
// centerline.
func (t *Track) OnRoad(p Point) bool {
	return t.LateralOffset(p) <= t.RoadWidth/2
}

// Progress returns the arc-length position of p projected onto the
// centerline, in [0, Length()]. Forward motion along the track strictly
// increases this value.
func (t *Track) Progress(p Point) float64 {
	best := math.Inf(1)
	progress := 0.0
	for i := 0; i < len(t.Centerline)-1; i++ {
		seg := Segment{t.Centerline[i], t.Centerline[i+1]}
		d, frac := pointSegmentDistance(p, seg)
		if d < best {
			best = d
			progress = t.arcLen[i] + frac*(t.arcLen[i+1]-t.arcLen[i])
		}
	}
	return progress
}

// CrossedFinish reports whether the movement from one point to another
// crossed the finish gate.
func (t *Track) CrossedFinish(from, to Point) bool {
	return segmentsIntersect(Segment{from, to}, t.FinishGate())
}
