// Package stages implements the pluggable transformation stages the
// orchestrator sequences over a record batch:
//
//   - Clean      — missing-value imputation plus stopword/lemma text cleanup
//   - Extract    — sequential ids and capitalized-run name extraction
//   - Vectorize  — deterministic feature-hashing embedding
//   - Redact     — capitalized-word substitution for log excerpts
//
// Each stage is a pure function over the batch (or a single text) and never
// retains its input. Every batch-level stage preserves record count; the
// orchestrator re-checks that invariant at each boundary.
package stages
