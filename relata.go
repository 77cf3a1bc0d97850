// Package relata finds related articles for a query: it encodes the query
// with a sentence transformer, retrieves candidates from a pgvector index,
// fuses semantic similarity with popularity and title signals, and links
// the results into a similarity graph.
package relata

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wikigraph/relata/core/pipeline"
	"github.com/wikigraph/relata/core/retrieval"
	"github.com/wikigraph/relata/database"
	"github.com/wikigraph/relata/helper"
	"github.com/wikigraph/relata/model"
	loadSql "github.com/wikigraph/relata/sql"
)

// Relata provides a unified interface to the search engine and its stores
type Relata struct {
	DB       *helper.Database
	Articles *database.ArticlesDBHandler
	Vectors  *database.VectorsDBHandler
	Encoder  *pipeline.Encoder // Optional query encoder
	Engine   *retrieval.Engine
	// Search configuration shared with the engine
	Config *model.SearchConfig
	// Logging
	log *slog.Logger
}

// NewRelata creates a new Relata instance with all handlers initialized.
// A nil searchConfig falls back to the defaults.
func NewRelata(dbConfig *helper.DatabaseConfiguration, searchConfig *model.SearchConfig) (*Relata, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	if searchConfig == nil {
		searchConfig = model.DefaultSearchConfig()
	}
	if err := searchConfig.Validate(); err != nil {
		return nil, err
	}

	// Initialize database
	db := helper.NewDatabase("relata", dbConfig, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	articles, err := database.NewArticlesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create articles handler", err)
	}

	vectors, err := database.NewVectorsDBHandler(db, searchConfig.EmbeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create vectors handler", err)
	}

	return &Relata{
		DB:       db,
		Articles: articles,
		Vectors:  vectors,
		Config:   searchConfig,
		log:      logger,
	}, nil
}

// Close closes the database connection
func (r *Relata) Close() error {
	if r.DB != nil && r.DB.Instance != nil {
		return r.DB.Instance.Close()
	}
	return nil
}

// SetEncoder sets the query encoder and builds the search engine around it
func (r *Relata) SetEncoder(encoder *pipeline.Encoder) error {
	engine, err := retrieval.NewEngine(encoder, r.Vectors, r.Articles, r.Config, r.log)
	if err != nil {
		return err
	}
	r.Encoder = encoder
	r.Engine = engine
	return nil
}

// UseDefaultEncoder sets up the default embedding encoder.
// This uses the all-MiniLM-L6-v2 model (384 dimensions).
func (r *Relata) UseDefaultEncoder() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewEncodingError("create default embedder", err)
	}
	return r.SetEncoder(pipeline.NewEncoder(embedder))
}

// IndexArticle stores an article's metadata and embedding in one step:
// 1. Upserting the article row
// 2. Encoding the title unless an embedding is given
// 3. Upserting the embedding into the vector index
func (r *Relata) IndexArticle(ctx context.Context, article *model.Article, embedding []float32) error {
	if article == nil {
		return helper.NewMetadataError("index article", fmt.Errorf("article must not be nil"))
	}
	if len(embedding) == 0 {
		if r.Encoder == nil {
			return helper.NewEncodingError("index article", fmt.Errorf("encoder not set, use SetEncoder() or UseDefaultEncoder() first"))
		}
		encoded, err := r.Encoder.Encode(ctx, article.Title)
		if err != nil {
			return err
		}
		embedding = encoded
	}

	if err := r.Articles.InsertArticle(article); err != nil {
		return err
	}

	if err := r.Vectors.InsertVector(article.ID, embedding); err != nil {
		return err
	}

	r.log.Info("Indexed article", slog.Int64("id", article.ID), slog.String("title", article.Title))
	return nil
}

// Search finds related articles for the request's query
func (r *Relata) Search(ctx context.Context, request *model.SearchRequest) (*model.SearchResponse, error) {
	if r.Engine == nil {
		return nil, helper.NewConfigError("search", fmt.Errorf("encoder not set, use SetEncoder() or UseDefaultEncoder() first"))
	}
	return r.Engine.Search(ctx, request)
}

// Stats reports index size and signal coverage
func (r *Relata) Stats(ctx context.Context) (*model.EngineStats, error) {
	if r.Engine == nil {
		return nil, helper.NewConfigError("stats", fmt.Errorf("encoder not set, use SetEncoder() or UseDefaultEncoder() first"))
	}
	return r.Engine.Stats(ctx)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (r *Relata) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return r.Vectors.ChangeIndexType(ctx, indexType, params)
}
