package driving

import (
	"math"
	"testing"
)

func TestEvaluatePriorityOrder(t *testing.T) {
	rc := DefaultConfig().Rewards

	testCases := []struct {
		name         string
		facts        stepFacts
		wantOutcome  Outcome
		wantReward   float64
		wantTerminal bool
	}{
		{
			name:         "finish_wins_even_off_road",
			facts:        stepFacts{finishCrossed: true, onRoad: false, lowSpeed: true},
			wantOutcome:  OutcomeFinish,
			wantReward:   rc.Finish,
			wantTerminal: true,
		},
		{
			name:         "finish_wins_on_road",
			facts:        stepFacts{finishCrossed: true, onRoad: true},
			wantOutcome:  OutcomeFinish,
			wantReward:   rc.Finish,
			wantTerminal: true,
		},
		{
			name:         "off_road_outside_grace_terminates",
			facts:        stepFacts{onRoad: false, nearFinish: false},
			wantOutcome:  OutcomeOffTrack,
			wantReward:   rc.OffTrack,
			wantTerminal: true,
		},
		{
			name:         "off_road_inside_grace_continues",
			facts:        stepFacts{onRoad: false, nearFinish: true},
			wantOutcome:  OutcomeRunning,
			wantReward:   rc.Grace,
			wantTerminal: false,
		},
		{
			name:         "grace_beats_low_speed",
			facts:        stepFacts{onRoad: false, nearFinish: true, lowSpeed: true},
			wantOutcome:  OutcomeRunning,
			wantReward:   rc.Grace,
			wantTerminal: false,
		},
		{
			name:         "low_speed_on_road",
			facts:        stepFacts{onRoad: true, lowSpeed: true, progressDelta: 3},
			wantOutcome:  OutcomeRunning,
			wantReward:   rc.LowSpeedPenalty,
			wantTerminal: false,
		},
		{
			name:         "progress_reward",
			facts:        stepFacts{onRoad: true, progressDelta: 2},
			wantOutcome:  OutcomeRunning,
			wantReward:   rc.ProgressGain * 2,
			wantTerminal: false,
		},
		{
			name:         "negative_progress_penalised",
			facts:        stepFacts{onRoad: true, progressDelta: -1.5},
			wantOutcome:  OutcomeRunning,
			wantReward:   rc.ProgressGain * -1.5,
			wantTerminal: false,
		},
		{
			name:         "no_motion_no_reward",
			facts:        stepFacts{onRoad: true, progressDelta: 0},
			wantOutcome:  OutcomeRunning,
			wantReward:   0,
			wantTerminal: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := evaluate(tc.facts, rc)
			if v.Outcome != tc.wantOutcome {
				t.Errorf("outcome = %q, want %q", v.Outcome, tc.wantOutcome)
			}
			if math.Abs(v.Reward-tc.wantReward) > 1e-12 {
				t.Errorf("reward = %f, want %f", v.Reward, tc.wantReward)
			}
			if v.Terminal != tc.wantTerminal {
				t.Errorf("terminal = %v, want %v", v.Terminal, tc.wantTerminal)
			}
		})
	}
}

func TestOutcomeTerminal(t *testing.T) {
	testCases := []struct {
		outcome Outcome
		want    bool
	}{
		{OutcomeRunning, false},
		{OutcomeFinish, true},
		{OutcomeOffTrack, true},
		{OutcomeTimeout, false},
	}
	for _, tc := range testCases {
		if got := tc.outcome.Terminal(); got != tc.want {
			t.Errorf("%q.Terminal() = %v, want %v", tc.outcome, got, tc.want)
		}
	}
}
