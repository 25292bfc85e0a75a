package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/refinestack/refinestack/internal/artifact"
	"github.com/refinestack/refinestack/internal/scoring"
	"github.com/refinestack/refinestack/pkg/types"
)

// goodOnly always selects the good action so accumulator math is predictable.
type goodOnly struct{}

func (goodOnly) Select(types.Record, scoring.State) types.Action { return types.ActionGood }

func fptr(v float64) *float64 { return &v }

func newOrchestrator(t *testing.T) (*Orchestrator, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := artifact.New(dir, filepath.Join(dir, "blob"))
	if err != nil {
		t.Fatalf("artifact.New: %v", err)
	}
	logPath := filepath.Join(dir, "pipeline.log")
	return New(st, scoring.NewEngine(goodOnly{}), logPath), dir
}

func batchOf(texts ...string) []types.Review {
	out := make([]types.Review, len(texts))
	for i, txt := range texts {
		out[i] = types.Review{Text: txt}
	}
	return out
}

func TestRun_EmptyBatch(t *testing.T) {
	o, _ := newOrchestrator(t)
	_, err := o.Run(context.Background(), nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Run(nil): got %v, want ErrEmptyBatch", err)
	}
}

func TestRun_CountPreserved(t *testing.T) {
	o, _ := newOrchestrator(t)
	res, err := o.Run(context.Background(), batchOf("one", "two", "three"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Records) != 3 {
		t.Errorf("records: got %d, want 3", len(res.Records))
	}
}

func TestRun_AssetIDsDenseAndOrdered(t *testing.T) {
	o, _ := newOrchestrator(t)
	res, err := o.Run(context.Background(), batchOf("a", "b", "c"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"asset_001", "asset_002", "asset_003"}
	for i, rec := range res.Records {
		if rec.AssetID != want[i] {
			t.Errorf("record %d: asset id got %q, want %q", i, rec.AssetID, want[i])
		}
		if rec.ID != i+1 {
			t.Errorf("record %d: id got %d, want %d", i, rec.ID, i+1)
		}
	}
}

func TestRun_RecordsEnriched(t *testing.T) {
	o, _ := newOrchestrator(t)
	res, err := o.Run(context.Background(), []types.Review{
		{Text: "Maria enjoyed the soup", Rating: fptr(4)},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rec := res.Records[0]
	if rec.EmbeddingSize == 0 {
		t.Error("embedding_size: got 0, want set")
	}
	if len(rec.Names) == 0 || rec.Names[0] != "Maria" {
		t.Errorf("names: got %v, want [Maria]", rec.Names)
	}
	if rec.Refined == nil {
		t.Fatal("refined_output: missing")
	}
	if rec.Refined.Reward != 4 {
		t.Errorf("reward: got %v, want 4 (rating)", rec.Refined.Reward)
	}
}

func TestRun_RewardDefaultsToFive(t *testing.T) {
	o, _ := newOrchestrator(t)
	// No ratings anywhere in the batch, so nothing is imputed either.
	res, err := o.Run(context.Background(), batchOf("plain text"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Records[0].Refined.Reward != 5 {
		t.Errorf("reward: got %v, want default 5", res.Records[0].Refined.Reward)
	}
}

func TestRun_StateThreadedAcrossBatch(t *testing.T) {
	o, _ := newOrchestrator(t)
	res, err := o.Run(context.Background(), []types.Review{
		{Text: "a", Rating: fptr(5)},
		{Text: "b", Rating: fptr(7)},
		{Text: "c", Rating: fptr(1)},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	first := res.Records[0].Refined.Accumulators[types.ActionGood]
	third := res.Records[2].Refined.Accumulators[types.ActionGood]
	// 0.1*5 = 0.5, then 1.15, then 1.135.
	if math.Abs(first-0.5) > 1e-9 {
		t.Errorf("after record 1: got %v, want 0.5", first)
	}
	if math.Abs(third-1.135) > 1e-9 {
		t.Errorf("after record 3: got %v, want 1.135", third)
	}
}

func TestRun_FreshStatePerRun(t *testing.T) {
	o, _ := newOrchestrator(t)
	batch := []types.Review{{Text: "x", Rating: fptr(5)}}

	res1, err := o.Run(context.Background(), batch)
	if err != nil {
		t.Fatalf("Run 1: %v", err)
	}
	res2, err := o.Run(context.Background(), batch)
	if err != nil {
		t.Fatalf("Run 2: %v", err)
	}

	a1 := res1.Records[0].Refined.Accumulators[types.ActionGood]
	a2 := res2.Records[0].Refined.Accumulators[types.ActionGood]
	if a1 != a2 {
		t.Errorf("accumulators carried across runs: %v vs %v", a1, a2)
	}
}

func TestRun_WritesAllArtifacts(t *testing.T) {
	o, dir := newOrchestrator(t)
	res, err := o.Run(context.Background(), batchOf("hello"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, slot := range []string{artifact.SlotCleaned, artifact.SlotMeta, artifact.SlotAssets} {
		if _, err := os.Stat(filepath.Join(dir, slot)); err != nil {
			t.Errorf("slot %q: %v", slot, err)
		}
	}
	if _, err := os.Stat(res.PersistedPath); err != nil {
		t.Errorf("blob: %v", err)
	}
	if _, err := os.Stat(res.LogPath); err != nil {
		t.Errorf("run log: %v", err)
	}
}

func TestRun_LogContainsRedactedTextOnly(t *testing.T) {
	o, _ := newOrchestrator(t)
	res, err := o.Run(context.Background(), batchOf("Maria hated waiting"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(res.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	log := string(data)
	if strings.Contains(log, "Maria") {
		t.Error("run log leaks raw text")
	}
	if !strings.Contains(log, "ANON") {
		t.Error("run log missing redacted marker")
	}
	if !strings.Contains(log, "id=1") || !strings.Contains(log, "reward=5") {
		t.Errorf("run log missing id/reward fields: %q", log)
	}
}

func TestRun_ArtifactKeepsUnredactedText(t *testing.T) {
	o, dir := newOrchestrator(t)
	if _, err := o.Run(context.Background(), batchOf("Maria hated waiting")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, artifact.SlotAssets))
	if err != nil {
		t.Fatalf("read assets: %v", err)
	}
	if !strings.Contains(string(data), "Maria") {
		t.Error("final artifact should keep the cleaned, unredacted text")
	}
}

func TestRun_CancelledContext_StageError(t *testing.T) {
	o, _ := newOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, batchOf("a"))
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("Run: got %v, want *StageError", err)
	}
	if se.Stage != StageClean {
		t.Errorf("stage: got %q, want %q", se.Stage, StageClean)
	}
}

func TestRun_PersistFailure_NamesStage(t *testing.T) {
	dir := t.TempDir()
	st, err := artifact.New(dir, filepath.Join(dir, "blob"))
	if err != nil {
		t.Fatalf("artifact.New: %v", err)
	}
	// Unwritable log path forces a failure in the scoring stage setup.
	o := New(st, scoring.NewEngine(goodOnly{}), filepath.Join(dir, "missing", "run.log"))

	_, err = o.Run(context.Background(), batchOf("a"))
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("Run: got %v, want *StageError", err)
	}
	if se.Stage != StageScore {
		t.Errorf("stage: got %q, want %q", se.Stage, StageScore)
	}
}

func TestRun_ConcurrentRunsSerialized(t *testing.T) {
	o, _ := newOrchestrator(t)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = o.Run(context.Background(), batchOf(fmt.Sprintf("text %d", n)))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("run %d: %v", i, err)
		}
	}
}
