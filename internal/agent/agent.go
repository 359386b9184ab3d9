// Package agent provides the policies that drive the environment: a random
// baseline and a linear policy, plus the artifact format used to persist
// trained policies. The environment itself never sees this package; it only
// receives the actions.
package agent

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/openlaps/driftsim/internal/driving"
)

// Agent maps an observation to an action. Implementations must be
// deterministic given their own state; any randomness is seeded explicitly.
type Agent interface {
	Act(obs []float64) []float64
}

// RandomAgent samples uniform actions from a seeded source. Used for smoke
// checks and as a training baseline.
type RandomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent creates a random agent with the given seed.
func NewRandomAgent(seed int64) *RandomAgent {
	return &RandomAgent{rng: rand.New(rand.NewSource(seed))}
}

// Act returns a uniform random action in [-1, 1]^2, ignoring the observation.
func (a *RandomAgent) Act([]float64) []float64 {
	return []float64{
		a.rng.Float64()*2 - 1,
		a.rng.Float64()*2 - 1,
	}
}

// LinearAgent is a linear policy squashed through tanh:
// action[i] = tanh(sum_j W[i][j]*obs[j] + b[i]). Small, fast to evaluate,
// and enough parameters for population-based search to steer the car.
type LinearAgent struct {
	Weights [][]float64 // ActionSize rows of ObservationSize columns
	Bias    []float64   // ActionSize entries
}

// NewLinearAgent validates the parameter shapes and builds the policy.
func NewLinearAgent(weights [][]float64, bias []float64) (*LinearAgent, error) {
	if len(weights) != driving.ActionSize {
		return nil, fmt.Errorf("weights must have %d rows, got %d", driving.ActionSize, len(weights))
	}
	for i, row := range weights {
		if len(row) != driving.ObservationSize {
			return nil, fmt.Errorf("weights row %d must have %d columns, got %d", i, driving.ObservationSize, len(row))
		}
	}
	if len(bias) != driving.ActionSize {
		return nil, fmt.Errorf("bias must have %d entries, got %d", driving.ActionSize, len(bias))
	}
	return &LinearAgent{Weights: weights, Bias: bias}, nil
}

// ZeroLinearAgent returns a linear agent with all parameters zero. It emits
// the null action for every observation.
func ZeroLinearAgent() *LinearAgent {
	weights := make([][]float64, driving.ActionSize)
	for i := range weights {
		weights[i] = make([]float64, driving.ObservationSize)
	}
	return &LinearAgent{Weights: weights, Bias: make([]float64, driving.ActionSize)}
}

// Act applies the linear map and tanh squashing. The output is always
// within the environment's action bounds.
func (a *LinearAgent) Act(obs []float64) []float64 {
	action := make([]float64, driving.ActionSize)
	for i := range action {
		sum := a.Bias[i]
		for j := 0; j < len(a.Weights[i]) && j < len(obs); j++ {
			sum += a.Weights[i][j] * obs[j]
		}
		action[i] = math.Tanh(sum)
	}
	return action
}

// Params flattens the policy parameters, weights row-major then biases.
// The inverse of SetParams.
func (a *LinearAgent) Params() []float64 {
	out := make([]float64, 0, driving.ActionSize*driving.ObservationSize+driving.ActionSize)
	for _, row := range a.Weights {
		out = append(out, row...)
	}
	return append(out, a.Bias...)
}

// NumParams is the flattened parameter count of a LinearAgent.
const NumParams = driving.ActionSize*driving.ObservationSize + driving.ActionSize

// LinearAgentFromParams rebuilds a policy from a flattened parameter vector.
func LinearAgentFromParams(params []float64) (*LinearAgent, error) {
	if len(params) != NumParams {
		return nil, fmt.Errorf("expected %d parameters, got %d", NumParams, len(params))
	}
	agent := ZeroLinearAgent()
	idx := 0
	for i := range agent.Weights {
		for j := range agent.Weights[i] {
			agent.Weights[i][j] = params[idx]
			idx++
		}
	}
	copy(agent.Bias, params[idx:])
	return agent, nil
}
