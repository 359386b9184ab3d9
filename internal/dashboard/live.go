package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openlaps/driftsim/internal/agent"
	"github.com/openlaps/driftsim/internal/driving"
	"github.com/openlaps/driftsim/internal/monitoring"
	"github.com/openlaps/driftsim/internal/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is a local tool; cross-origin pages may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveFrame is one step of a streamed episode.
type liveFrame struct {
	Step     int              `json:"step"`
	Car      driving.CarState `json:"car"`
	Rays     []liveRay        `json:"rays"`
	Reward   float64          `json:"reward"`
	Outcome  string           `json:"outcome"`
	Done     bool             `json:"done"`
	Episode  int              `json:"episode"`
	TrackRef trackGeometry    `json:"track,omitempty"`
}

type liveRay struct {
	X1  float64 `json:"x1"`
	Y1  float64 `json:"y1"`
	X2  float64 `json:"x2"`
	Y2  float64 `json:"y2"`
	Hit bool    `json:"hit"`
}

// trackGeometry is sent once per episode, on the first frame.
type trackGeometry struct {
	Left   []sim.Point  `json:"left,omitempty"`
	Right  []sim.Point  `json:"right,omitempty"`
	Finish *sim.Segment `json:"finish,omitempty"`
}

// handleLive upgrades to a websocket and streams random-policy episodes,
// one frame per simulation step, paced to the configured timestep. The
// stream stops when the client disconnects. Query params:
//   - seed (optional; default is time-derived)
//   - episodes (optional; default 10, max 100)
func (ws *WebServer) handleLive(w http.ResponseWriter, r *http.Request) {
	seed := ws.clock.Now().UnixNano()
	if s := r.URL.Query().Get("seed"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, "invalid seed: "+err.Error())
			return
		}
		seed = v
	}
	episodes := 10
	if e := r.URL.Query().Get("episodes"); e != "" {
		if v, err := strconv.Atoi(e); err == nil && v > 0 && v <= 100 {
			episodes = v
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	monitoring.Logf("live stream started (seed=%d, episodes=%d)", seed, episodes)
	if err := ws.streamEpisodes(conn, seed, episodes); err != nil {
		monitoring.Logf("live stream ended: %v", err)
	}
}

func (ws *WebServer) streamEpisodes(conn *websocket.Conn, seed int64, episodes int) error {
	env := driving.New(ws.envCfg, seed)
	policy := agent.NewRandomAgent(seed)

	dt := ws.envCfg.DT
	if dt <= 0 {
		dt = 1.0 / 60.0
	}
	ticker := ws.clock.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	for ep := 0; ep < episodes; ep++ {
		obs, _ := env.Reset()

		left, right := env.Track().Borders()
		gate := env.Track().FinishGate()
		first := ws.makeFrame(env, 0, driving.OutcomeRunning, false, ep)
		first.TrackRef = trackGeometry{Left: left, Right: right, Finish: &gate}
		if err := conn.WriteJSON(first); err != nil {
			return err
		}

		for {
			<-ticker.C()
			result, err := env.Step(policy.Act(obs))
			if err != nil {
				return err
			}
			obs = result.Observation

			frame := ws.makeFrame(env, result.Reward, result.Info.Outcome, result.Terminated || result.Truncated, ep)
			if err := conn.WriteJSON(frame); err != nil {
				return err
			}
			if result.Terminated || result.Truncated {
				break
			}
		}
	}
	return nil
}

func (ws *WebServer) makeFrame(env *driving.Env, reward float64, outcome driving.Outcome, done bool, episode int) liveFrame {
	reading := env.LastReading()
	rays := make([]liveRay, 0, len(reading.Rays))
	for _, ray := range reading.Rays {
		rays = append(rays, liveRay{
			X1:  ray.Start.X,
			Y1:  ray.Start.Y,
			X2:  ray.End.X,
			Y2:  ray.End.Y,
			Hit: ray.Hit,
		})
	}
	return liveFrame{
		Step:    env.Steps(),
		Car:     env.Car(),
		Rays:    rays,
		Reward:  reward,
		Outcome: string(outcome),
		Done:    done,
		Episode: episode,
	}
}
