package model

import (
	"time"

	"github.com/google/uuid"
)

// Article represents a corpus article with its ranking signals.
// Signal columns are nullable because coverage over the corpus is partial;
// a nil signal contributes nothing to scoring, it is never an error.
type Article struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Title     string    `json:"title"`
	PageRank  *float64  `json:"pagerank,omitempty"`
	PageViews *int64    `json:"pageviews,omitempty"`
	Backlinks *int64    `json:"backlinks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SignalCoverage reports how many articles carry each optional signal.
type SignalCoverage struct {
	Articles  int64 `json:"articles"`
	PageRank  int64 `json:"pagerank"`
	PageViews int64 `json:"pageviews"`
	Backlinks int64 `json:"backlinks"`
}

// EngineStats summarizes the state of the search engine's backing stores.
type EngineStats struct {
	Vectors  int64           `json:"vectors"`
	Coverage *SignalCoverage `json:"coverage"`
}

// HasPageRank reports whether pagerank data is present for any article.
func (c SignalCoverage) HasPageRank() bool {
	return c.PageRank > 0
}

// HasPageViews reports whether pageview data is present for any article.
func (c SignalCoverage) HasPageViews() bool {
	return c.PageViews > 0
}

// HasBacklinks reports whether backlink data is present for any article.
func (c SignalCoverage) HasBacklinks() bool {
	return c.Backlinks > 0
}
