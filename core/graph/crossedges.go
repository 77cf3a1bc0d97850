// Package graph builds similarity edges between result articles from their
// stored embeddings, connecting new results with each other and with the
// articles the caller already has on screen.
package graph

import (
	"context"
	"sort"

	"github.com/wikigraph/relata/model"
)

// VectorSource reconstructs stored embeddings by article ID.
type VectorSource interface {
	Reconstruct(ctx context.Context, id int64) ([]float32, error)
	CanReconstruct() bool
}

// TitleResolver resolves article IDs to display titles.
type TitleResolver interface {
	SelectTitlesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// pairKey identifies an unordered article pair. Low always holds the smaller
// ID so (a, b) and (b, a) collapse onto one edge.
type pairKey struct {
	Low  int64
	High int64
}

func newPairKey(a int64, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{Low: a, High: b}
}

// BuildCrossEdges computes similarity edges among the new result articles and
// between new results and the caller's context articles. Pairs scoring below
// the threshold are dropped, each unordered pair appears at most once with
// its highest score, and self-loops are never emitted. Articles whose vectors
// cannot be reconstructed are skipped silently. Edges come back sorted by
// descending score, ties broken by source then target title, so output is
// deterministic.
func BuildCrossEdges(ctx context.Context, vectors VectorSource, titles TitleResolver, newIDs []int64, contextIDs []int64, threshold float64) ([]*model.Edge, error) {
	if !vectors.CanReconstruct() {
		return []*model.Edge{}, nil
	}

	newIDs = dedupe(newIDs)
	contextIDs = subtract(dedupe(contextIDs), newIDs)
	if len(newIDs) == 0 {
		return []*model.Edge{}, nil
	}

	newVectors := reconstructAll(ctx, vectors, newIDs)
	contextVectors := reconstructAll(ctx, vectors, contextIDs)
	if len(newVectors) == 0 {
		return []*model.Edge{}, nil
	}

	best := map[pairKey]float32{}
	for aID, aVec := range newVectors {
		for bID, bVec := range newVectors {
			if aID >= bID {
				continue
			}
			recordPair(best, aID, bID, dot(aVec, bVec), threshold)
		}
		for bID, bVec := range contextVectors {
			recordPair(best, aID, bID, dot(aVec, bVec), threshold)
		}
	}
	if len(best) == 0 {
		return []*model.Edge{}, nil
	}

	ids := make([]int64, 0, len(best)*2)
	seen := map[int64]bool{}
	for pair := range best {
		if !seen[pair.Low] {
			seen[pair.Low] = true
			ids = append(ids, pair.Low)
		}
		if !seen[pair.High] {
			seen[pair.High] = true
			ids = append(ids, pair.High)
		}
	}
	titleByID, err := titles.SelectTitlesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	edges := make([]*model.Edge, 0, len(best))
	for pair, score := range best {
		sourceTitle, sourceOk := titleByID[pair.Low]
		targetTitle, targetOk := titleByID[pair.High]
		if !sourceOk || !targetOk {
			continue
		}
		edges = append(edges, &model.Edge{
			Source: sourceTitle,
			Target: targetTitle,
			Score:  score,
		})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Score != edges[j].Score {
			return edges[i].Score > edges[j].Score
		}
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	return edges, nil
}

func recordPair(best map[pairKey]float32, a int64, b int64, score float32, threshold float64) {
	if a == b || float64(score) < threshold {
		return
	}
	key := newPairKey(a, b)
	if existing, ok := best[key]; !ok || score > existing {
		best[key] = score
	}
}

// reconstructAll fetches embeddings for all ids, dropping the ones whose
// vectors are missing from the index.
func reconstructAll(ctx context.Context, vectors VectorSource, ids []int64) map[int64][]float32 {
	reconstructed := map[int64][]float32{}
	for _, id := range ids {
		embedding, err := vectors.Reconstruct(ctx, id)
		if err != nil {
			continue
		}
		reconstructed[id] = embedding
	}
	return reconstructed
}

func dedupe(ids []int64) []int64 {
	seen := map[int64]bool{}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func subtract(ids []int64, remove []int64) []int64 {
	removed := map[int64]bool{}
	for _, id := range remove {
		removed[id] = true
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !removed[id] {
			out = append(out, id)
		}
	}
	return out
}

func dot(a []float32, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
