package scoring

import (
	"math"
	"testing"

	"github.com/refinestack/refinestack/pkg/types"
)

// scriptedStrategy returns actions from a fixed sequence, repeating the last.
type scriptedStrategy struct {
	actions []types.Action
	i       int
}

func (s *scriptedStrategy) Select(types.Record, State) types.Action {
	a := s.actions[s.i]
	if s.i < len(s.actions)-1 {
		s.i++
	}
	return a
}

func approx(got, want float64) bool { return math.Abs(got-want) < 1e-9 }

func TestScore_MovesTowardReward(t *testing.T) {
	e := NewEngine(&scriptedStrategy{actions: []types.Action{types.ActionGood}})
	st := NewState()

	reward := 8.0
	for i := 0; i < 20; i++ {
		before := st.Accumulators[types.ActionGood]
		var res types.RefinementResult
		res, st = e.Score(types.Record{ID: i + 1}, reward, st)

		after := res.Accumulators[types.ActionGood]
		if before == reward {
			continue
		}
		if math.Abs(after-reward) >= math.Abs(before-reward) {
			t.Fatalf("step %d: |%.4f-%.1f| not smaller than |%.4f-%.1f|",
				i+1, after, reward, before, reward)
		}
	}
}

func TestScore_UpdateRule(t *testing.T) {
	e := NewEngine(&scriptedStrategy{actions: []types.Action{types.ActionBad}})
	st := NewState()

	res, st := e.Score(types.Record{ID: 1}, 10, st)
	// 0 + 0.1 * (10 - 0) = 1.
	if !approx(res.Accumulators[types.ActionBad], 1.0) {
		t.Errorf("bad accumulator: got %v, want 1.0", res.Accumulators[types.ActionBad])
	}
	if !approx(res.Accumulators[types.ActionGood], 0) {
		t.Errorf("good accumulator: got %v, want 0 (untouched)", res.Accumulators[types.ActionGood])
	}

	res, _ = e.Score(types.Record{ID: 2}, 10, st)
	// 1 + 0.1 * (10 - 1) = 1.9.
	if !approx(res.Accumulators[types.ActionBad], 1.9) {
		t.Errorf("bad accumulator after second update: got %v, want 1.9", res.Accumulators[types.ActionBad])
	}
}

func TestScore_ThreeRecordScenario(t *testing.T) {
	// Rewards [5, 7, 1], all routed to the good accumulator.
	e := NewEngine(&scriptedStrategy{actions: []types.Action{types.ActionGood}})
	st := NewState()

	rewards := []float64{5, 7, 1}
	var snaps []map[types.Action]float64
	for i, r := range rewards {
		var res types.RefinementResult
		res, st = e.Score(types.Record{ID: i + 1}, r, st)
		snaps = append(snaps, res.Accumulators)
	}

	// 0.1*5 = 0.5; 0.5 + 0.1*(7-0.5) = 1.15; 1.15 + 0.1*(1-1.15) = 1.135.
	if !approx(snaps[0][types.ActionGood], 0.5) {
		t.Errorf("after record 1: got %v, want 0.5", snaps[0][types.ActionGood])
	}
	if !approx(snaps[2][types.ActionGood], 1.135) {
		t.Errorf("after record 3: got %v, want 1.135", snaps[2][types.ActionGood])
	}
	if snaps[2][types.ActionGood] == snaps[0][types.ActionGood] {
		t.Error("accumulator did not change between record 1 and record 3")
	}
}

func TestScore_SnapshotIsCopy(t *testing.T) {
	e := NewEngine(&scriptedStrategy{actions: []types.Action{types.ActionGood}})
	st := NewState()

	res, st := e.Score(types.Record{ID: 1}, 5, st)
	res.Accumulators[types.ActionGood] = 999

	if st.Accumulators[types.ActionGood] == 999 {
		t.Error("mutating the returned snapshot leaked into engine state")
	}
}

func TestScore_InputStateUntouched(t *testing.T) {
	e := NewEngine(&scriptedStrategy{actions: []types.Action{types.ActionGood}})
	st := NewState()

	_, _ = e.Score(types.Record{ID: 1}, 5, st)
	if st.Accumulators[types.ActionGood] != 0 {
		t.Errorf("input state mutated: got %v, want 0", st.Accumulators[types.ActionGood])
	}
}

func TestRandomStrategy_Deterministic(t *testing.T) {
	a := NewRandomStrategy(42)
	b := NewRandomStrategy(42)
	for i := 0; i < 50; i++ {
		if a.Select(types.Record{}, State{}) != b.Select(types.Record{}, State{}) {
			t.Fatalf("sequence diverged at step %d", i)
		}
	}
}

func TestRandomStrategy_BothActionsOccur(t *testing.T) {
	s := NewRandomStrategy(1)
	seen := map[types.Action]bool{}
	for i := 0; i < 100; i++ {
		seen[s.Select(types.Record{}, State{})] = true
	}
	if !seen[types.ActionGood] || !seen[types.ActionBad] {
		t.Errorf("expected both actions over 100 draws, got %v", seen)
	}
}
