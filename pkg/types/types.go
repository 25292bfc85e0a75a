package types

// Action is the label the scoring engine assigns to a record.
type Action string

// The two actions the scoring engine chooses between.
const (
	ActionGood Action = "good"
	ActionBad  Action = "bad"
)

// Review is one raw input record as submitted to POST /optimize.
// All fields are optional; the cleaning stage imputes missing values.
type Review struct {
	Rating    *float64 `json:"rating,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"` // ISO-8601
	Text      string   `json:"text,omitempty"`
}

// RefinementResult is the scoring engine's per-record output: the chosen
// action, the reward that drove the accumulator update, and a snapshot
// (copy, not a live reference) of both accumulators after the update.
type RefinementResult struct {
	Action       Action             `json:"action"`
	Reward       float64            `json:"reward"`
	Accumulators map[Action]float64 `json:"accumulators"`
}

// Record is one enriched record as it moves through the pipeline stages.
// Stages add derived fields; none may drop or duplicate records.
type Record struct {
	ID            int               `json:"id"`
	Text          string            `json:"text"`
	Rating        *float64          `json:"rating,omitempty"`
	Timestamp     string            `json:"timestamp,omitempty"`
	Names         []string          `json:"names,omitempty"`
	EmbeddingSize int               `json:"embedding_size,omitempty"`
	Refined       *RefinementResult `json:"refined_output,omitempty"`
	AssetID       string            `json:"asset_id,omitempty"`
}
