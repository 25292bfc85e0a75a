// Package scoring implements the per-record feedback accumulator.
//
// Engine.Score(rec, reward, state) chooses an action via a pluggable
// Strategy, then moves the chosen accumulator toward the reward by a fixed
// learning rate (exponential moving average, 0.1). State is an explicit
// value threaded through calls: each pipeline run starts from NewState()
// and nothing persists across runs.
//
// The default Strategy selects uniformly at random between "good" and "bad"
// and deliberately ignores the reward — this is a toy exploration policy,
// kept behind the Strategy interface so a real policy can replace it.
package scoring
