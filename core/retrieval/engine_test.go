package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikigraph/relata/helper"
	"github.com/wikigraph/relata/model"
)

// mockEncoder records queries and returns a fixed embedding
type mockEncoder struct {
	embedding []float32
	err       error
	queries   []string
}

func (m *mockEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	m.queries = append(m.queries, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.embedding, nil
}

// mockIndex serves a fixed candidate pool and per-id vectors
type mockIndex struct {
	ids     []int64
	scores  []float32
	vectors map[int64][]float32
	err     error
}

func (m *mockIndex) SearchNearest(ctx context.Context, embedding []float32, k int) ([]int64, []float32, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	if len(m.ids) > k {
		return m.ids[:k], m.scores[:k], nil
	}
	return m.ids, m.scores, nil
}

func (m *mockIndex) Reconstruct(ctx context.Context, id int64) ([]float32, error) {
	embedding, ok := m.vectors[id]
	if !ok {
		return nil, fmt.Errorf("no vector stored for article %v", id)
	}
	return embedding, nil
}

func (m *mockIndex) CanReconstruct() bool {
	return m.vectors != nil
}

func (m *mockIndex) Count(ctx context.Context) (int64, error) {
	return int64(len(m.ids)), nil
}

// mockStore serves articles from an in-memory map
type mockStore struct {
	articles map[int64]*model.Article
	err      error
}

func (m *mockStore) SelectArticlesByIDs(ctx context.Context, ids []int64) ([]*model.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	found := []*model.Article{}
	for _, id := range ids {
		if article, ok := m.articles[id]; ok {
			found = append(found, article)
		}
	}
	return found, nil
}

func (m *mockStore) SelectTitlesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	titles := map[int64]string{}
	for _, id := range ids {
		if article, ok := m.articles[id]; ok {
			titles[id] = article.Title
		}
	}
	return titles, nil
}

func (m *mockStore) SignalCoverage(ctx context.Context) (*model.SignalCoverage, error) {
	coverage := &model.SignalCoverage{Articles: int64(len(m.articles))}
	for _, article := range m.articles {
		if article.PageRank != nil {
			coverage.PageRank++
		}
		if article.PageViews != nil {
			coverage.PageViews++
		}
		if article.Backlinks != nil {
			coverage.Backlinks++
		}
	}
	return coverage, nil
}

func float64Ptr(v float64) *float64 {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

func testFixtures() (*mockEncoder, *mockIndex, *mockStore) {
	encoder := &mockEncoder{embedding: []float32{1.0, 0.0, 0.0}}
	index := &mockIndex{
		ids:    []int64{1, 2, 3, 4},
		scores: []float32{0.95, 0.9, 0.85, 0.2},
		vectors: map[int64][]float32{
			1: {1.0, 0.0, 0.0},
			2: {0.95, 0.05, 0.0},
			3: {0.9, 0.1, 0.0},
			4: {0.0, 1.0, 0.0},
		},
	}
	store := &mockStore{
		articles: map[int64]*model.Article{
			1: {ID: 1, Title: "Graph theory", PageRank: float64Ptr(60), PageViews: int64Ptr(2_000_000)},
			2: {ID: 2, Title: "Graph coloring", PageRank: float64Ptr(30), PageViews: int64Ptr(400_000)},
			3: {ID: 3, Title: "Category:Graph theory", PageRank: float64Ptr(90), PageViews: int64Ptr(5_000_000)},
			4: {ID: 4, Title: "Baroque music", PageRank: float64Ptr(40), PageViews: int64Ptr(900_000)},
		},
	}
	return encoder, index, store
}

func TestNewEngine(t *testing.T) {
	encoder, index, store := testFixtures()

	t.Run("Create engine with defaults", func(t *testing.T) {
		engine, err := NewEngine(encoder, index, store, nil, nil)
		assert.NoError(t, err, "Expected NewEngine to not return an error")
		assert.NotNil(t, engine, "Expected engine to not be nil")
	})

	t.Run("Create engine with nil collaborators", func(t *testing.T) {
		_, err := NewEngine(nil, index, store, nil, nil)
		assert.ErrorIs(t, err, helper.ErrConfig, "Expected nil encoder to be rejected")

		_, err = NewEngine(encoder, nil, store, nil, nil)
		assert.ErrorIs(t, err, helper.ErrConfig, "Expected nil index to be rejected")

		_, err = NewEngine(encoder, index, nil, nil, nil)
		assert.ErrorIs(t, err, helper.ErrConfig, "Expected nil store to be rejected")
	})

	t.Run("Create engine with invalid config", func(t *testing.T) {
		config := model.DefaultSearchConfig()
		config.Epsilon = 0
		_, err := NewEngine(encoder, index, store, config, nil)
		assert.ErrorIs(t, err, helper.ErrConfig, "Expected invalid config to be rejected")
	})
}

func TestEngineSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("Search ranks and filters candidates", func(t *testing.T) {
		encoder, index, store := testFixtures()
		engine, err := NewEngine(encoder, index, store, nil, nil)
		require.NoError(t, err)

		response, err := engine.Search(ctx, &model.SearchRequest{Query: "graph theory"})
		require.NoError(t, err, "Expected Search to not return an error")
		require.NotNil(t, response, "Expected response to not be nil")

		titles := []string{}
		for _, result := range response.Results {
			titles = append(titles, result.Title)
		}
		assert.NotContains(t, titles, "Category:Graph theory", "Expected meta pages to be filtered out")
		assert.Equal(t, "Graph theory", response.Results[0].Title, "Expected the exact title match to rank first")

		for i := 1; i < len(response.Results); i++ {
			assert.GreaterOrEqual(t, response.Results[i-1].ScoreFloat, response.Results[i].ScoreFloat, "Expected results in descending score order")
		}
		for _, result := range response.Results {
			assert.Equal(t, int(result.ScoreFloat*100+0.5), result.Score, "Expected the display score to round the float score")
			assert.Nil(t, result.Signals, "Expected no signal breakdown without debug")
		}
	})

	t.Run("Search keeps candidate order on tied scores", func(t *testing.T) {
		// Identical signals, identical similarity, and no title overlap
		// with the query, so both candidates fuse to the same score.
		store := &mockStore{articles: map[int64]*model.Article{
			11: {ID: 11, Title: "Baroque music", PageRank: float64Ptr(40), PageViews: int64Ptr(500_000)},
			12: {ID: 12, Title: "Chamber opera", PageRank: float64Ptr(40), PageViews: int64Ptr(500_000)},
		}}
		encoder := &mockEncoder{embedding: []float32{1.0, 0.0, 0.0}}

		index := &mockIndex{ids: []int64{11, 12}, scores: []float32{0.5, 0.5}}
		engine, err := NewEngine(encoder, index, store, nil, nil)
		require.NoError(t, err)

		response, err := engine.Search(ctx, &model.SearchRequest{Query: "graph theory"})
		require.NoError(t, err)
		require.Len(t, response.Results, 2, "Expected both tied candidates in the result")
		assert.Equal(t, response.Results[0].ScoreFloat, response.Results[1].ScoreFloat, "Expected the candidates to score identically")
		assert.Equal(t, int64(11), response.Results[0].ID, "Expected the first candidate to stay first on a tie")
		assert.Equal(t, int64(12), response.Results[1].ID, "Expected the second candidate to stay second on a tie")

		reversed := &mockIndex{ids: []int64{12, 11}, scores: []float32{0.5, 0.5}}
		engine, err = NewEngine(encoder, reversed, store, nil, nil)
		require.NoError(t, err)

		response, err = engine.Search(ctx, &model.SearchRequest{Query: "graph theory"})
		require.NoError(t, err)
		require.Len(t, response.Results, 2)
		assert.Equal(t, int64(12), response.Results[0].ID, "Expected the tie order to follow the candidate order, not the ids")
		assert.Equal(t, int64(11), response.Results[1].ID, "Expected the tie order to follow the candidate order, not the ids")
	})

	t.Run("Search normalizes underscores in the query", func(t *testing.T) {
		encoder, index, store := testFixtures()
		engine, err := NewEngine(encoder, index, store, nil, nil)
		require.NoError(t, err)

		_, err = engine.Search(ctx, &model.SearchRequest{Query: "graph_theory"})
		require.NoError(t, err)
		require.Len(t, encoder.queries, 1, "Expected exactly one encode call")
		assert.Equal(t, "graph theory", encoder.queries[0], "Expected underscores replaced before encoding")
	})

	t.Run("Search truncates to the requested k", func(t *testing.T) {
		encoder, index, store := testFixtures()
		engine, err := NewEngine(encoder, index, store, nil, nil)
		require.NoError(t, err)

		response, err := engine.Search(ctx, &model.SearchRequest{Query: "graph theory", K: 1})
		require.NoError(t, err)
		assert.Len(t, response.Results, 1, "Expected the result list truncated to k")
		assert.Equal(t, "Graph theory", response.Results[0].Title, "Expected the top result to survive truncation")
	})

	t.Run("Search attaches cross edges to context articles", func(t *testing.T) {
		encoder, index, store := testFixtures()
		engine, err := NewEngine(encoder, index, store, nil, nil)
		require.NoError(t, err)

		response, err := engine.Search(ctx, &model.SearchRequest{Query: "graph theory", Context: []int64{2}, K: 1})
		require.NoError(t, err)

		require.NotEmpty(t, response.CrossEdges, "Expected an edge between the result and the context article")
		assert.Equal(t, "Graph theory", response.CrossEdges[0].Source, "Expected the edge to start at the result")
		assert.Equal(t, "Graph coloring", response.CrossEdges[0].Target, "Expected the edge to reach the context article")
	})

	t.Run("Search with debug returns signal breakdowns", func(t *testing.T) {
		encoder, index, store := testFixtures()
		engine, err := NewEngine(encoder, index, store, nil, nil)
		require.NoError(t, err)

		response, err := engine.Search(ctx, &model.SearchRequest{Query: "graph theory", Debug: true})
		require.NoError(t, err)

		for _, result := range response.Results {
			require.NotNil(t, result.Signals, "Expected a signal breakdown for %v", result.Title)
			assert.Equal(t, result.ScoreFloat, result.Signals.Final, "Expected the breakdown final to match the result score")
		}
	})

	t.Run("Search with empty candidate pool returns empty response", func(t *testing.T) {
		encoder, _, store := testFixtures()
		empty := &mockIndex{}
		engine, err := NewEngine(encoder, empty, store, nil, nil)
		require.NoError(t, err)

		response, err := engine.Search(ctx, &model.SearchRequest{Query: "graph theory"})
		require.NoError(t, err, "Expected an empty pool to not be an error")
		assert.Empty(t, response.Results, "Expected no results from an empty pool")
		assert.Empty(t, response.CrossEdges, "Expected no edges from an empty pool")
	})

	t.Run("Search with invalid requests", func(t *testing.T) {
		encoder, index, store := testFixtures()
		engine, err := NewEngine(encoder, index, store, nil, nil)
		require.NoError(t, err)

		_, err = engine.Search(ctx, nil)
		assert.ErrorIs(t, err, helper.ErrConfig, "Expected nil request to be rejected")

		_, err = engine.Search(ctx, &model.SearchRequest{Query: "   "})
		assert.ErrorIs(t, err, helper.ErrConfig, "Expected blank query to be rejected")
	})

	t.Run("Search surfaces encoding failures", func(t *testing.T) {
		_, index, store := testFixtures()
		failing := &mockEncoder{err: helper.NewEncodingError("encode", fmt.Errorf("model unavailable"))}
		engine, err := NewEngine(failing, index, store, nil, nil)
		require.NoError(t, err)

		_, err = engine.Search(ctx, &model.SearchRequest{Query: "graph theory"})
		assert.ErrorIs(t, err, helper.ErrEncoding, "Expected the encoding error kind to pass through")
	})

	t.Run("Search stops on cancelled context", func(t *testing.T) {
		encoder, index, store := testFixtures()
		engine, err := NewEngine(encoder, index, store, nil, nil)
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = engine.Search(cancelled, &model.SearchRequest{Query: "graph theory"})
		assert.ErrorIs(t, err, context.Canceled, "Expected the cancelled context to abort the search")
	})
}

func TestEngineStats(t *testing.T) {
	ctx := context.Background()
	encoder, index, store := testFixtures()
	engine, err := NewEngine(encoder, index, store, nil, nil)
	require.NoError(t, err)

	stats, err := engine.Stats(ctx)
	require.NoError(t, err, "Expected Stats to not return an error")
	assert.Equal(t, int64(4), stats.Vectors, "Expected the vector count to match the index")
	assert.Equal(t, int64(4), stats.Coverage.Articles, "Expected the article count to match the store")
	assert.True(t, stats.Coverage.HasPageRank(), "Expected pagerank coverage to be reported")
	assert.False(t, stats.Coverage.HasBacklinks(), "Expected missing backlinks to be reported")
}
