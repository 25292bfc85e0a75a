package stages

import (
	"hash/fnv"
	"math"
	"strings"
)

// EmbeddingDim is the fixed dimensionality of the text embedding.
const EmbeddingDim = 128

// Vectorize computes a deterministic embedding for text using feature
// hashing: each lower-cased token is hashed into one of EmbeddingDim buckets
// with a sign bit, and the resulting vector is L2-normalized.
//
// This is a stand-in for a model-backed vectorizer; the pipeline only
// depends on the call being deterministic and returning a fixed-size vector.
func Vectorize(text string) []float64 {
	vec := make([]float64, EmbeddingDim)

	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()

		bucket := int(sum % EmbeddingDim)
		if (sum>>63)&1 == 1 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
