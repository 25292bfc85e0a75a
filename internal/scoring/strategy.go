package scoring

import (
	"math/rand"
	"sync"
	"time"

	"github.com/refinestack/refinestack/pkg/types"
)

// Strategy selects the action for a record given the current run state.
// The default implementation is pure exploration; a learned policy can be
// substituted without touching the engine's update contract.
type Strategy interface {
	Select(rec types.Record, st State) types.Action
}

// randomStrategy picks uniformly between good and bad, ignoring both the
// record and the reward signal.
type randomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomStrategy returns the uniform-random selection strategy.
// seed 0 seeds from the current time; any other value gives a deterministic
// sequence, which tests rely on.
func NewRandomStrategy(seed int64) Strategy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randomStrategy{rng: rand.New(rand.NewSource(seed))}
}

func (s *randomStrategy) Select(types.Record, State) types.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng.Intn(2) == 0 {
		return types.ActionGood
	}
	return types.ActionBad
}
