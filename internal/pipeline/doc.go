// Package pipeline orchestrates the fixed stage sequence over a review
// batch: clean → extract → score-per-record → redact-for-log → asset id
// assignment → persistence.
//
// Each stage call is synchronous and must fully complete before the next
// begins. Any stage error aborts the entire run and surfaces as a single
// *StageError naming the failing stage; there are no retries and no partial
// results. The record-count invariant (len out == len in) is re-checked at
// every stage boundary.
//
// Runs over the shared artifact slots are serialized by a run-level mutex,
// so concurrent /optimize requests cannot interleave their writes.
package pipeline
