package stages

import (
	"sort"
	"strings"

	"github.com/refinestack/refinestack/pkg/types"
)

// PlaceholderText fills records submitted without any text.
const PlaceholderText = "No Reviews"

// stopwords is the English stopword set removed during text cleanup.
// Comparison is case-insensitive.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"been": {}, "but": {}, "by": {}, "for": {}, "from": {}, "had": {},
	"has": {}, "have": {}, "he": {}, "her": {}, "his": {}, "i": {}, "in": {},
	"is": {}, "it": {}, "its": {}, "me": {}, "my": {}, "no": {}, "not": {},
	"of": {}, "on": {}, "or": {}, "our": {}, "she": {}, "so": {}, "that": {},
	"the": {}, "their": {}, "them": {}, "they": {}, "this": {}, "to": {},
	"was": {}, "we": {}, "were": {}, "with": {}, "you": {}, "your": {},
}

// Clean imputes missing values and normalizes text for a batch of reviews.
// The returned slice always has the same length as the input.
//
// Imputation rules:
//   - missing rating    → mean of the ratings present in the batch
//     (left unset when no record carries a rating)
//   - missing timestamp → mode of the timestamps present in the batch,
//     ties broken by the smallest value
//   - missing text      → the PlaceholderText marker
//
// After imputation, stopwords are removed from each text and the remaining
// words are lemmatized.
func Clean(reviews []types.Review) []types.Review {
	out := make([]types.Review, len(reviews))
	copy(out, reviews)

	meanRating, haveMean := ratingMean(out)
	modeTS := timestampMode(out)

	for i := range out {
		if out[i].Rating == nil && haveMean {
			m := meanRating
			out[i].Rating = &m
		}
		if out[i].Timestamp == "" {
			out[i].Timestamp = modeTS
		}
		if out[i].Text == "" {
			out[i].Text = PlaceholderText
		}
		out[i].Text = CleanText(out[i].Text)
	}
	return out
}

// CleanText removes stopwords and lemmatizes the remaining words.
// Word casing is preserved so later entity extraction still works.
func CleanText(text string) string {
	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		core, leading, trailing := trimPunct(w)
		if core == "" {
			continue
		}
		if _, stop := stopwords[strings.ToLower(core)]; stop {
			continue
		}
		kept = append(kept, leading+lemmatize(core)+trailing)
	}
	return strings.Join(kept, " ")
}

// trimPunct splits a token into leading punctuation, the core word, and
// trailing punctuation.
func trimPunct(w string) (core, leading, trailing string) {
	start := 0
	for start < len(w) && !isWordByte(w[start]) {
		start++
	}
	end := len(w)
	for end > start && !isWordByte(w[end-1]) {
		end--
	}
	return w[start:end], w[:start], w[end:]
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// lemmatize reduces a word to a base form with simple suffix rules.
// This is a lightweight stand-in for a dictionary lemmatizer; the pipeline
// treats the cleaning stage as a replaceable collaborator.
func lemmatize(w string) string {
	lower := strings.ToLower(w)
	switch {
	case strings.HasSuffix(lower, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(lower, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(lower, "es") && len(w) > 3:
		return w[:len(w)-2]
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") && len(w) > 3:
		return w[:len(w)-1]
	default:
		return w
	}
}

// ratingMean returns the mean of the ratings present in the batch.
// ok is false when no record carries a rating.
func ratingMean(reviews []types.Review) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, r := range reviews {
		if r.Rating != nil {
			sum += *r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// timestampMode returns the most frequent timestamp present in the batch,
// breaking ties by the smallest value. Returns "" when none are present.
func timestampMode(reviews []types.Review) string {
	counts := make(map[string]int)
	for _, r := range reviews {
		if r.Timestamp != "" {
			counts[r.Timestamp]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}
