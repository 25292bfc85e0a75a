package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/refinestack/refinestack/internal/artifact"
	"github.com/refinestack/refinestack/internal/scoring"
	"github.com/refinestack/refinestack/internal/stages"
	"github.com/refinestack/refinestack/pkg/types"
)

// Stage names used in StageError and log output, in execution order.
const (
	StageClean   = "clean"
	StageExtract = "extract"
	StageScore   = "score"
	StageAssets  = "assets"
	StagePersist = "persist"
)

// ErrEmptyBatch is returned when Run is called with no records.
var ErrEmptyBatch = errors.New("pipeline: empty batch")

// StageError reports which stage aborted the run and why. Any stage error
// aborts the whole run; no partial result is returned and no retry is made.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %q failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// RunResult is the aggregated outcome of one successful pipeline run.
type RunResult struct {
	Records       []types.Record
	FinalPath     string
	PersistedPath string
	LogPath       string
}

// Orchestrator sequences the fixed transformation stages over a record
// batch: clean → extract → score → redact-for-log → assign asset ids →
// persist. Each stage completes fully before the next begins.
//
// A run-level mutex serializes runs so two concurrent batches can never
// interleave writes to the shared artifact slots.
type Orchestrator struct {
	runMu   sync.Mutex
	store   *artifact.Store
	engine  *scoring.Engine
	logPath string
}

// New creates an Orchestrator writing artifacts through store and per-record
// audit lines to the log file at logPath.
func New(store *artifact.Store, engine *scoring.Engine, logPath string) *Orchestrator {
	return &Orchestrator{store: store, engine: engine, logPath: logPath}
}

// Run executes the full pipeline over batch and returns the enriched
// records together with the artifact paths.
//
// The record-count invariant — no stage drops or duplicates records — is
// re-checked at every stage boundary. Scoring state is created fresh for
// this run and threaded record-to-record; nothing carries over to the next
// run.
func (o *Orchestrator) Run(ctx context.Context, batch []types.Review) (*RunResult, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	// Stage 1: clean.
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageClean, Err: err}
	}
	cleaned := stages.Clean(batch)
	if err := checkCount(len(batch), len(cleaned)); err != nil {
		return nil, &StageError{Stage: StageClean, Err: err}
	}
	if _, err := o.store.Write(artifact.SlotCleaned, cleaned); err != nil {
		return nil, &StageError{Stage: StageClean, Err: err}
	}

	// Stage 2: extract metadata.
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	records := stages.Extract(cleaned)
	if err := checkCount(len(cleaned), len(records)); err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	if _, err := o.store.Write(artifact.SlotMeta, records); err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}

	// Stage 3: score each record, threading the accumulator state across
	// the whole batch. The redacted excerpt goes to the audit log only —
	// the stored artifact keeps the cleaned text.
	runLog, err := openRunLog(o.logPath)
	if err != nil {
		return nil, &StageError{Stage: StageScore, Err: err}
	}
	defer runLog.Close()

	st := scoring.NewState()
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: StageScore, Err: err}
		}
		rec := &records[i]
		if rec.ID != i+1 {
			return nil, &StageError{
				Stage: StageScore,
				Err:   fmt.Errorf("malformed record: id %d at position %d", rec.ID, i),
			}
		}

		embedding := stages.Vectorize(rec.Text)
		rec.EmbeddingSize = len(embedding)

		reward := float64(scoring.DefaultReward)
		if rec.Rating != nil {
			reward = *rec.Rating
		}

		var res types.RefinementResult
		res, st = o.engine.Score(*rec, reward, st)
		rec.Refined = &res

		if err := runLog.Record(rec.ID, res.Action, res.Reward, stages.Redact(rec.Text)); err != nil {
			return nil, &StageError{Stage: StageScore, Err: err}
		}
	}

	// Stage 4: assign dense sequential asset ids in input order.
	for i := range records {
		records[i].AssetID = fmt.Sprintf("asset_%03d", i+1)
	}
	if err := checkCount(len(batch), len(records)); err != nil {
		return nil, &StageError{Stage: StageAssets, Err: err}
	}

	// Stage 5: persist the final artifact and its blob copy.
	finalPath, err := o.store.Write(artifact.SlotAssets, records)
	if err != nil {
		return nil, &StageError{Stage: StagePersist, Err: err}
	}
	blobPath, err := o.store.WriteBlob(records)
	if err != nil {
		return nil, &StageError{Stage: StagePersist, Err: err}
	}

	slog.Info("pipeline: run complete",
		"records", len(records),
		"final", finalPath,
		"blob", blobPath,
	)

	return &RunResult{
		Records:       records,
		FinalPath:     finalPath,
		PersistedPath: blobPath,
		LogPath:       o.logPath,
	}, nil
}

// checkCount enforces the record-count invariant at a stage boundary.
func checkCount(in, out int) error {
	if in != out {
		return fmt.Errorf("record count changed: %d in, %d out", in, out)
	}
	return nil
}
