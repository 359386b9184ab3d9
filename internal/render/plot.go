// Package render draws tracks and driven trajectories to PNG files. This is
// the offline rendering surface: the environment only exposes geometry, and
// this package turns it into frames for inspection after a run.
package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/openlaps/driftsim/internal/sim"
)

var (
	borderColor     = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	centerlineColor = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	trajectoryColor = color.RGBA{R: 30, G: 130, B: 200, A: 255}
	finishColor     = color.RGBA{R: 220, G: 40, B: 40, A: 255}
)

// toXYs converts map points into plot coordinates. Map y grows downwards;
// the plot flips it so tracks render the way the live view shows them.
func toXYs(points []sim.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i] = plotter.XY{X: p.X, Y: -p.Y}
	}
	return xys
}

func addLine(p *plot.Plot, points []sim.Point, c color.Color, width vg.Length) error {
	line, err := plotter.NewLine(toXYs(points))
	if err != nil {
		return fmt.Errorf("build line: %w", err)
	}
	line.Color = c
	line.Width = width
	p.Add(line)
	return nil
}

// TrajectoryPNG renders the track borders, centerline, finish gate and the
// driven trajectory to a PNG at path. A nil or empty trajectory renders the
// bare track.
func TrajectoryPNG(path string, track *sim.Track, trajectory []sim.Point) error {
	if track == nil {
		return fmt.Errorf("nil track")
	}

	p := plot.New()
	p.Title.Text = "driftsim episode"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	left, right := track.Borders()
	if err := addLine(p, left, borderColor, vg.Points(2)); err != nil {
		return err
	}
	if err := addLine(p, right, borderColor, vg.Points(2)); err != nil {
		return err
	}
	if err := addLine(p, track.Centerline, centerlineColor, vg.Points(0.5)); err != nil {
		return err
	}

	gate := track.FinishGate()
	if err := addLine(p, []sim.Point{gate.A, gate.B}, finishColor, vg.Points(3)); err != nil {
		return err
	}

	if len(trajectory) > 1 {
		if err := addLine(p, trajectory, trajectoryColor, vg.Points(1.5)); err != nil {
			return err
		}
	}
	if len(trajectory) > 0 {
		last := trajectory[len(trajectory)-1]
		end, err := plotter.NewScatter(toXYs([]sim.Point{last}))
		if err != nil {
			return fmt.Errorf("build end marker: %w", err)
		}
		end.GlyphStyle = draw.GlyphStyle{Color: trajectoryColor, Radius: vg.Points(4), Shape: draw.CircleGlyph{}}
		p.Add(end)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}
