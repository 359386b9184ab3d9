package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/openlaps/driftsim/internal/sim"
)

// handleRewardsChart renders a quick line chart (HTML) of episode rewards for
// one run using go-echarts. This is a debugging endpoint; the main UI reads
// the JSON API instead. Query params:
//   - run_id (required)
//   - limit (optional; default 1000)
func (ws *WebServer) handleRewardsChart(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "run_id is required")
		return
	}

	episodes, err := ws.db.Episodes(runID, parseLimit(r, 1000))
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "listing episodes: "+err.Error())
		return
	}
	if len(episodes) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no episodes recorded for run")
		return
	}

	xs := make([]string, 0, len(episodes))
	rewards := make([]opts.LineData, 0, len(episodes))
	steps := make([]opts.LineData, 0, len(episodes))
	for _, ep := range episodes {
		xs = append(xs, strconv.Itoa(ep.Seq))
		rewards = append(rewards, opts.LineData{Value: ep.TotalReward})
		steps = append(steps, opts.LineData{Value: ep.Steps})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Episode Rewards", Theme: "dark", Width: "1100px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Episode Rewards", Subtitle: fmt.Sprintf("run=%s episodes=%d", runID, len(episodes))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "total reward"}),
	)
	line.SetXAxis(xs)
	line.AddSeries("reward", rewards)
	line.AddSeries("steps", steps, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 0}))

	ws.renderChart(w, line)
}

// handleTrackChart renders a preview of a generated track as a scatter of
// border points. Query params:
//   - seed (optional; default 0)
func (ws *WebServer) handleTrackChart(w http.ResponseWriter, r *http.Request) {
	var seed int64
	if s := r.URL.Query().Get("seed"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, "invalid seed: "+err.Error())
			return
		}
		seed = v
	}

	track := sim.NewTrackGenerator(ws.envCfg.Track, seed).Generate()
	left, right := track.Borders()

	// Flip Y so the chart matches the screen convention used everywhere else.
	toData := func(pts []sim.Point) []opts.ScatterData {
		data := make([]opts.ScatterData, 0, len(pts))
		for _, p := range pts {
			data = append(data, opts.ScatterData{Value: []interface{}{p.X, -p.Y}})
		}
		return data
	}
	center := toData(track.Centerline)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track Preview", Theme: "dark", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Track Preview", Subtitle: fmt.Sprintf("seed=%d length=%.0f", seed, track.Length())}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: ws.envCfg.Track.MapWidth, Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Min: -ws.envCfg.Track.MapHeight, Max: 0, Name: "y"}),
	)
	scatter.AddSeries("left border", toData(left), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("right border", toData(right), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("centerline", center, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))

	ws.renderChart(w, scatter)
}

type chartRenderer interface {
	Render(w io.Writer) error
}

func (ws *WebServer) renderChart(w http.ResponseWriter, chart chartRenderer) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "rendering chart: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
