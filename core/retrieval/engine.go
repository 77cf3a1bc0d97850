// Package retrieval orchestrates the related-article search pipeline: encode
// the query, pull a candidate pool from the vector index, filter and score
// against stored signals, then attach cross edges between the results.
package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/wikigraph/relata/core/graph"
	"github.com/wikigraph/relata/core/ranking"
	"github.com/wikigraph/relata/helper"
	"github.com/wikigraph/relata/model"
)

// Engine runs related-article searches. It is stateless between calls and
// safe for concurrent use as long as its collaborators are.
type Engine struct {
	encoder  Encoder
	index    VectorIndex
	articles ArticleStore
	config   *model.SearchConfig
	logger   *slog.Logger
}

// NewEngine creates a new search engine
func NewEngine(encoder Encoder, index VectorIndex, articles ArticleStore, config *model.SearchConfig, logger *slog.Logger) (*Engine, error) {
	if encoder == nil {
		return nil, helper.NewConfigError("new engine", model.ErrNilEncoder)
	}
	if index == nil {
		return nil, helper.NewConfigError("new engine", model.ErrNilIndex)
	}
	if articles == nil {
		return nil, helper.NewConfigError("new engine", model.ErrNilStore)
	}
	if config == nil {
		config = model.DefaultSearchConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		encoder:  encoder,
		index:    index,
		articles: articles,
		config:   config,
		logger:   logger,
	}, nil
}

// Search runs the full pipeline for one query and returns the ranked results
// with cross edges. An empty candidate pool yields an empty response, not an
// error.
func (e *Engine) Search(ctx context.Context, request *model.SearchRequest) (*model.SearchResponse, error) {
	if request == nil {
		return nil, helper.NewConfigError("search", model.ErrNilRequest)
	}

	query := strings.TrimSpace(strings.ReplaceAll(request.Query, "_", " "))
	if query == "" {
		return nil, helper.NewConfigError("search", model.ErrEmptyQuery)
	}

	k := request.K
	if k <= 0 {
		k = e.config.ResultsToReturn
	}

	embedding, err := e.encoder.Encode(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidateIDs, similarities, err := e.index.SearchNearest(ctx, embedding, e.config.CandidatePoolSize)
	if err != nil {
		return nil, err
	}
	if len(candidateIDs) == 0 {
		e.logger.Info("search found no candidates", slog.String("query", query))
		return &model.SearchResponse{Results: []*model.RankedResult{}, CrossEdges: []*model.Edge{}}, nil
	}

	similarityByID := make(map[int64]float64, len(candidateIDs))
	for i, id := range candidateIDs {
		similarityByID[id] = float64(similarities[i])
	}

	articles, err := e.articles.SelectArticlesByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]*model.RankedResult, 0, len(articles))
	for _, article := range articles {
		if ranking.IsMetaPage(article.Title) {
			continue
		}

		similarity := similarityByID[article.ID]
		score := ranking.MultiSignalScore(similarity, article, query, e.config)

		result := &model.RankedResult{
			ID:         article.ID,
			Title:      article.Title,
			Score:      ranking.DisplayScore(score),
			ScoreFloat: score,
		}
		if request.Debug {
			result.Signals = ranking.Breakdown(similarity, article, query, e.config)
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ScoreFloat > results[j].ScoreFloat
	})
	if len(results) > k {
		results = results[:k]
	}

	resultIDs := make([]int64, len(results))
	for i, result := range results {
		resultIDs[i] = result.ID
	}

	edges, err := graph.BuildCrossEdges(ctx, e.index, e.articles, resultIDs, request.Context, e.config.CrossEdgeThreshold)
	if err != nil {
		return nil, err
	}

	e.logger.Info(
		"search completed",
		slog.String("query", query),
		slog.Int("candidates", len(candidateIDs)),
		slog.Int("results", len(results)),
		slog.Int("crossEdges", len(edges)),
	)

	return &model.SearchResponse{Results: results, CrossEdges: edges}, nil
}

// Stats reports the size of the index and which ranking signals the metadata
// store currently carries.
func (e *Engine) Stats(ctx context.Context) (*model.EngineStats, error) {
	vectors, err := e.index.Count(ctx)
	if err != nil {
		return nil, err
	}
	coverage, err := e.articles.SignalCoverage(ctx)
	if err != nil {
		return nil, err
	}
	return &model.EngineStats{
		Vectors:  vectors,
		Coverage: coverage,
	}, nil
}
