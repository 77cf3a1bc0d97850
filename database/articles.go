package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/wikigraph/relata/helper"
	"github.com/wikigraph/relata/model"
	loadSql "github.com/wikigraph/relata/sql"
)

// ArticlesDBHandlerFunctions defines the interface for Articles database operations.
type ArticlesDBHandlerFunctions interface {
	InsertArticle(article *model.Article) error
	SelectArticle(id int64) (*model.Article, error)
	SelectArticlesByIDs(ctx context.Context, ids []int64) ([]*model.Article, error)
	SelectTitlesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
	SignalCoverage(ctx context.Context) (*model.SignalCoverage, error)
	DeleteArticle(id int64) error
}

// ArticlesDBHandler handles article metadata database operations
type ArticlesDBHandler struct {
	db *helper.Database
}

// NewArticlesDBHandler creates a new articles database handler.
// It initializes the database connection and loads article-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewArticlesDBHandler(db *helper.Database, force bool) (*ArticlesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	articlesDbHandler := &ArticlesDBHandler{
		db: db,
	}

	err := loadSql.LoadArticlesSql(articlesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewMetadataError("load articles sql", err)
	}

	err = articlesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewMetadataError("create table", err)
	}

	db.Logger.Info("Initialized ArticlesDBHandler")

	return articlesDbHandler, nil
}

// CreateTable creates the 'articles' table in the database.
// If the table already exists, it does not create it again.
func (h *ArticlesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_articles();`)
	if err != nil {
		log.Panicf("error initializing articles table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table articles")

	return nil
}

// InsertArticle inserts or updates an article by its corpus id
func (h *ArticlesDBHandler) InsertArticle(article *model.Article) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_article($1, $2, $3, $4, $5)`,
		article.ID,
		article.Title,
		article.PageRank,
		article.PageViews,
		article.Backlinks,
	)

	err := row.Scan(
		&article.ID,
		&article.RID,
		&article.Title,
		&article.PageRank,
		&article.PageViews,
		&article.Backlinks,
		&article.CreatedAt,
	)
	if err != nil {
		return helper.NewMetadataError("scan", err)
	}

	return nil
}

// SelectArticle retrieves an article by ID
func (h *ArticlesDBHandler) SelectArticle(id int64) (*model.Article, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_article($1)`,
		id,
	)

	article := &model.Article{}
	err := row.Scan(
		&article.ID,
		&article.RID,
		&article.Title,
		&article.PageRank,
		&article.PageViews,
		&article.Backlinks,
		&article.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewMetadataError("scan", err)
	}

	return article, nil
}

// SelectArticlesByIDs retrieves metadata for a batch of ids in one query.
// Rows for unknown ids are simply absent from the result.
// An empty id set returns an empty result without touching the store.
func (h *ArticlesDBHandler) SelectArticlesByIDs(ctx context.Context, ids []int64) ([]*model.Article, error) {
	if len(ids) == 0 {
		return []*model.Article{}, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_articles_by_ids($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, helper.NewMetadataError("query", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		article := &model.Article{}
		err := rows.Scan(
			&article.ID,
			&article.RID,
			&article.Title,
			&article.PageRank,
			&article.PageViews,
			&article.Backlinks,
			&article.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewMetadataError("scan", err)
		}

		articles = append(articles, article)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewMetadataError("rows error", err)
	}

	return articles, nil
}

// SelectTitlesByIDs resolves a batch of ids to titles in one query.
// The returned map only contains ids that exist in the store.
func (h *ArticlesDBHandler) SelectTitlesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	titles := map[int64]string{}
	if len(ids) == 0 {
		return titles, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_titles_by_ids($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, helper.NewMetadataError("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, helper.NewMetadataError("scan", err)
		}
		titles[id] = title
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewMetadataError("rows error", err)
	}

	return titles, nil
}

// SignalCoverage reports how many articles carry each ranking signal
func (h *ArticlesDBHandler) SignalCoverage(ctx context.Context) (*model.SignalCoverage, error) {
	row := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM signal_coverage()`)

	coverage := &model.SignalCoverage{}
	err := row.Scan(
		&coverage.Articles,
		&coverage.PageRank,
		&coverage.PageViews,
		&coverage.Backlinks,
	)
	if err != nil {
		return nil, helper.NewMetadataError("scan", err)
	}

	return coverage, nil
}

// DeleteArticle deletes an article by ID
func (h *ArticlesDBHandler) DeleteArticle(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_article($1)`,
		id,
	)
	if err != nil {
		return helper.NewMetadataError("exec", err)
	}
	return nil
}
