package domain

import "math"

// SparseVector is a term-weight vector over a fitted vocabulary. Only
// non-zero weights are stored, keyed by vocabulary index.
type SparseVector struct {
	// Weights maps vocabulary index to weight.
	Weights map[int]float64

	// Dim is the vocabulary size the vector was produced against.
	Dim int
}

// Norm returns the Euclidean length of the vector.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, w := range v.Weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product with other. Iterates the smaller map.
func (v SparseVector) Dot(other SparseVector) float64 {
	a, b := v.Weights, other.Weights
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for i, w := range a {
		if ow, ok := b[i]; ok {
			sum += w * ow
		}
	}
	return sum
}

// CosineSimilarity returns the cosine of the angle between the vectors.
// Either vector being zero yields 0.
func CosineSimilarity(a, b SparseVector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}
