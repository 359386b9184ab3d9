package driving

// Outcome classifies an environment step. OutcomeRunning is the only
// non-terminal value; the rest end the episode.
type Outcome string

const (
	OutcomeRunning  Outcome = "running"
	OutcomeFinish   Outcome = "finish"
	OutcomeOffTrack Outcome = "off_track"
	OutcomeTimeout  Outcome = "timeout"
)

// Terminal reports whether the outcome ends the episode. Timeout ends the
// episode by truncation rather than termination and is handled by the step
// counter, not the rule table.
func (o Outcome) Terminal() bool {
	return o == OutcomeFinish || o == OutcomeOffTrack
}

// stepFacts captures the classified geometry of a single step. The rules
// below consume only these facts, keeping the reward policy auditable in
// isolation from the simulation.
type stepFacts struct {
	finishCrossed bool    // Front point crossed the finish gate this step
	onRoad        bool    // Car center within half a road width of the centerline
	nearFinish    bool    // Car within the grace radius of the finish center
	lowSpeed      bool    // Speed magnitude below the crawl threshold
	progressDelta float64 // Centerline arc-length gained this step
}

// verdict is the tagged result of evaluating the reward rules.
type verdict struct {
	Outcome  Outcome
	Reward   float64
	Terminal bool
}

// rewardRule pairs a predicate with the verdict it produces. Rules are
// evaluated in declaration order; the first match wins.
type rewardRule struct {
	name    string
	applies func(stepFacts) bool
	verdict func(stepFacts, RewardConfig) verdict
}

// rewardRules is the priority-ordered reward policy:
//
//  1. finish beats everything, including being geometrically off-road;
//  2. off-road away from the finish terminates with a penalty;
//  3. off-road near the finish is tolerated with a small positive reward;
//  4. crawling on-road is penalised;
//  5. otherwise the reward tracks forward progress along the centerline.
var rewardRules = []rewardRule{
	{
		name:    "finish",
		applies: func(f stepFacts) bool { return f.finishCrossed },
		verdict: func(_ stepFacts, rc RewardConfig) verdict {
			return verdict{Outcome: OutcomeFinish, Reward: rc.Finish, Terminal: true}
		},
	},
	{
		name:    "off_track",
		applies: func(f stepFacts) bool { return !f.onRoad && !f.nearFinish },
		verdict: func(_ stepFacts, rc RewardConfig) verdict {
			return verdict{Outcome: OutcomeOffTrack, Reward: rc.OffTrack, Terminal: true}
		},
	},
	{
		name:    "grace_zone",
		applies: func(f stepFacts) bool { return !f.onRoad && f.nearFinish },
		verdict: func(_ stepFacts, rc RewardConfig) verdict {
			return verdict{Outcome: OutcomeRunning, Reward: rc.Grace}
		},
	},
	{
		name:    "low_speed",
		applies: func(f stepFacts) bool { return f.lowSpeed },
		verdict: func(_ stepFacts, rc RewardConfig) verdict {
			return verdict{Outcome: OutcomeRunning, Reward: rc.LowSpeedPenalty}
		},
	},
	{
		name:    "progress",
		applies: func(stepFacts) bool { return true },
		verdict: func(f stepFacts, rc RewardConfig) verdict {
			return verdict{Outcome: OutcomeRunning, Reward: rc.ProgressGain * f.progressDelta}
		},
	},
}

// evaluate runs the rule table over the step facts. The trailing progress
// rule always matches, so evaluate is total.
func evaluate(f stepFacts, rc RewardConfig) verdict {
	for _, rule := range rewardRules {
		if rule.applies(f) {
			return rule.verdict(f, rc)
		}
	}
	// Unreachable: the last rule matches unconditionally.
	return verdict{Outcome: OutcomeRunning}
}
