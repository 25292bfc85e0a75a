package scoring

import (
	"github.com/refinestack/refinestack/pkg/types"
)

// LearningRate is the exponential-moving-average step applied on every update.
const LearningRate = 0.1

// DefaultReward is used when a record carries no rating.
const DefaultReward = 5

// State holds the two named accumulators for one pipeline run. A fresh zeroed
// State is created per run; nothing persists across runs.
type State struct {
	Accumulators map[types.Action]float64
}

// NewState returns a State with both accumulators zeroed.
func NewState() State {
	return State{Accumulators: map[types.Action]float64{
		types.ActionGood: 0,
		types.ActionBad:  0,
	}}
}

// snapshot returns a copy of the accumulators, safe to hand to callers.
func (s State) snapshot() map[types.Action]float64 {
	out := make(map[types.Action]float64, len(s.Accumulators))
	for k, v := range s.Accumulators {
		out[k] = v
	}
	return out
}

// Engine chooses an action per record and folds the reward into the chosen
// accumulator. State is threaded through explicitly (state-in/state-out), so
// the engine itself carries no mutable per-run fields and needs no locking.
type Engine struct {
	strategy Strategy
}

// NewEngine creates an Engine using the given selection strategy.
// Pass nil to use the default uniform-random strategy.
func NewEngine(strategy Strategy) *Engine {
	if strategy == nil {
		strategy = NewRandomStrategy(0)
	}
	return &Engine{strategy: strategy}
}

// Score selects an action for rec, updates the matching accumulator toward
// reward by the learning rate, and returns the result together with the new
// state. The returned accumulator snapshot is a copy, not a live reference.
//
// The reward is folded in as supplied — no range validation is performed.
func (e *Engine) Score(rec types.Record, reward float64, st State) (types.RefinementResult, State) {
	action := e.strategy.Select(rec, st)

	next := State{Accumulators: st.snapshot()}
	next.Accumulators[action] += LearningRate * (reward - next.Accumulators[action])

	res := types.RefinementResult{
		Action:       action,
		Reward:       reward,
		Accumulators: next.snapshot(),
	}
	return res, next
}
