// Package vector provides the similarity math used by ordinance retrieval.
package vector

import (
	"fmt"
	"math"
)

// Cosine computes cosine similarity between two vectors using the standard
// dot-product-over-norms formula. A zero vector on either side yields 0.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d != %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (normA * normB), nil
}

// Percent converts a cosine similarity into the 0-100 integer shown to
// users. Negative similarity clamps to 0 rather than surfacing as a
// negative percentage.
func Percent(similarity float64) int {
	p := int(math.Round(similarity * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Normalize scales v to unit length in place and returns it. Zero vectors
// are returned unchanged.
func Normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}
