package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/wikigraph/relata/helper"
	loadSql "github.com/wikigraph/relata/sql"
)

// VectorsDBHandlerFunctions defines the interface for Vectors database operations.
type VectorsDBHandlerFunctions interface {
	InsertVector(articleID int64, embedding []float32) error
	SearchNearest(ctx context.Context, embedding []float32, k int) ([]int64, []float32, error)
	Reconstruct(ctx context.Context, articleID int64) ([]float32, error)
	CanReconstruct() bool
	Count(ctx context.Context) (int64, error)
	DeleteVector(articleID int64) error
}

// VectorsDBHandler handles article vector database operations. It is the
// adapter in front of the approximate-nearest-neighbor index: k-NN search
// and reconstruction-by-id. database/sql serializes access through its
// connection pool, so calls are safe for concurrent use.
type VectorsDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NewVectorsDBHandler creates a new vectors database handler.
// It initializes the database connection and loads vector-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewVectorsDBHandler(db *helper.Database, embeddingDim int, force bool) (*VectorsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	vectorsDbHandler := &VectorsDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadVectorsSql(vectorsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewIndexError("load vectors sql", err)
	}

	err = vectorsDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewIndexError("create table", err)
	}

	db.Logger.Info("Initialized VectorsDBHandler")

	return vectorsDbHandler, nil
}

// CreateTable creates the 'article_vectors' table in the database.
// If the table already exists, it does not create it again.
// It also creates the vector similarity index.
func (h *VectorsDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_vectors($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing article_vectors table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table article_vectors")

	return nil
}

// InsertVector inserts or replaces the embedding for an article
func (h *VectorsDBHandler) InsertVector(articleID int64, embedding []float32) error {
	if len(embedding) != h.embeddingDim {
		return helper.NewIndexError("dimension validation", fmt.Errorf("expected %d dimensions, got %d", h.embeddingDim, len(embedding)))
	}

	_, err := h.db.Instance.Exec(
		`SELECT insert_vector($1, $2)`,
		articleID,
		pgvector.NewVector(embedding),
	)
	if err != nil {
		return helper.NewIndexError("exec", err)
	}

	return nil
}

// SearchNearest performs approximate k-nearest-neighbor search by inner
// product. It returns ids and similarity scores in descending score
// order; fewer than k rows come back when the corpus is smaller than k.
func (h *VectorsDBHandler) SearchNearest(ctx context.Context, embedding []float32, k int) ([]int64, []float32, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_nearest_vectors($1, $2)`,
		pgvector.NewVector(embedding),
		k,
	)
	if err != nil {
		return nil, nil, helper.NewIndexError("query", err)
	}
	defer rows.Close()

	var ids []int64
	var scores []float32
	for rows.Next() {
		var id int64
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, nil, helper.NewIndexError("scan", err)
		}
		ids = append(ids, id)
		scores = append(scores, float32(score))
	}

	err = rows.Err()
	if err != nil {
		return nil, nil, helper.NewIndexError("rows error", err)
	}

	return ids, scores, nil
}

// Reconstruct retrieves the stored embedding for an article id.
// A missing id surfaces as an error wrapping sql.ErrNoRows.
func (h *VectorsDBHandler) Reconstruct(ctx context.Context, articleID int64) ([]float32, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_vector($1)`,
		articleID,
	)

	var vec pgvector.Vector
	if err := row.Scan(&vec); err != nil {
		return nil, helper.NewIndexError("scan", err)
	}

	return vec.Slice(), nil
}

// CanReconstruct reports whether reconstruction-by-id is available.
// The pgvector-backed index always stores full vectors.
func (h *VectorsDBHandler) CanReconstruct() bool {
	return true
}

// Count returns the total number of stored vectors
func (h *VectorsDBHandler) Count(ctx context.Context) (int64, error) {
	var total int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_vectors()`).Scan(&total)
	if err != nil {
		return 0, helper.NewIndexError("scan", err)
	}
	return total, nil
}

// DeleteVector deletes the embedding for an article id
func (h *VectorsDBHandler) DeleteVector(articleID int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_vector($1)`,
		articleID,
	)
	if err != nil {
		return helper.NewIndexError("exec", err)
	}
	return nil
}
