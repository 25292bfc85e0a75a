package stages

import (
	"strings"

	"github.com/refinestack/refinestack/pkg/types"
)

// NoName marks records where entity extraction found no candidate names.
const NoName = "No Name"

// Extract derives metadata from a cleaned batch, producing one Record per
// Review with a 1-based sequential id and the names found in the text.
// The returned slice always has the same length as the input.
func Extract(cleaned []types.Review) []types.Record {
	out := make([]types.Record, len(cleaned))
	for i, rev := range cleaned {
		out[i] = types.Record{
			ID:        i + 1,
			Text:      rev.Text,
			Rating:    rev.Rating,
			Timestamp: rev.Timestamp,
			Names:     ExtractNames(rev.Text),
		}
	}
	return out
}

// ExtractNames finds candidate person names in text: maximal runs of
// consecutive capitalized words. Returns [NoName] when nothing matches.
func ExtractNames(text string) []string {
	var names []string
	var run []string

	flush := func() {
		if len(run) > 0 {
			names = append(names, strings.Join(run, " "))
			run = nil
		}
	}

	for _, w := range strings.Fields(text) {
		core, _, trailing := trimPunct(w)
		if isCapitalized(core) {
			run = append(run, core)
			// Punctuation after a word terminates the run: "Alice, Bob"
			// is two names, not one.
			if trailing != "" {
				flush()
			}
			continue
		}
		flush()
	}
	flush()

	if len(names) == 0 {
		return []string{NoName}
	}
	return names
}

// isCapitalized reports whether w is an upper-case initial followed by
// lower-case letters only.
func isCapitalized(w string) bool {
	if len(w) < 2 {
		return false
	}
	if w[0] < 'A' || w[0] > 'Z' {
		return false
	}
	for i := 1; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}
