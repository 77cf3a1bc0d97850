package retrieval

import (
	"context"

	"github.com/wikigraph/relata/model"
)

// Encoder turns query text into an embedding.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex serves approximate nearest neighbor search over stored
// article embeddings.
type VectorIndex interface {
	SearchNearest(ctx context.Context, embedding []float32, k int) ([]int64, []float32, error)
	Reconstruct(ctx context.Context, id int64) ([]float32, error)
	CanReconstruct() bool
	Count(ctx context.Context) (int64, error)
}

// ArticleStore serves article metadata for candidate IDs.
type ArticleStore interface {
	SelectArticlesByIDs(ctx context.Context, ids []int64) ([]*model.Article, error)
	SelectTitlesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
	SignalCoverage(ctx context.Context) (*model.SignalCoverage, error)
}
