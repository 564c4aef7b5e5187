// Package distance provides vector distance calculations.
//
// # Supported Metrics
//
//   - Cosine distance: 1 - dot(a, b) / (|a| * |b|), in [0, 2]
//   - Dot product (inner product)
//
// Cosine distance of a zero vector is defined as 1 (similarity 0).
//
// # Usage
//
//	d := distance.CosineDistance(doc, query)
//	sim := distance.Dot(a, b)
//	ok := distance.NormalizeL2InPlace(vec)
package distance
