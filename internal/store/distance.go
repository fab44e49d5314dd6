// Package store holds the Document Store implementations and the ranking
// helpers they share.
package store

import (
	"fmt"
	"math"
	"sort"

	"github.com/xxxsen/pharmassist/internal/model"
)

// L2Distance computes the Euclidean distance between a and b.
func L2Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("l2 distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// RankNearest orders rows by ascending distance to query, keeping input order
// for ties, and returns the first k. Rows whose dimension differs from the
// query are an error.
func RankNearest(rows []model.DocumentChunk, query []float64, k int) ([]model.DocumentChunk, error) {
	if k <= 0 {
		return []model.DocumentChunk{}, nil
	}
	type scored struct {
		row  model.DocumentChunk
		dist float64
	}
	items := make([]scored, 0, len(rows))
	for _, row := range rows {
		d, err := L2Distance(row.Embedding, query)
		if err != nil {
			return nil, err
		}
		items = append(items, scored{row: row, dist: d})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].dist < items[j].dist
	})
	if k > len(items) {
		k = len(items)
	}
	out := make([]model.DocumentChunk, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, items[i].row)
	}
	return out, nil
}
