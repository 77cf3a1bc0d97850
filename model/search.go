package model

import "errors"

// Validation errors for search requests and engine construction.
var (
	ErrNilRequest = errors.New("search request must not be nil")
	ErrEmptyQuery = errors.New("query must not be empty")
	ErrNilEncoder = errors.New("encoder must not be nil")
	ErrNilIndex   = errors.New("vector index must not be nil")
	ErrNilStore   = errors.New("article store must not be nil")
)

// SearchRequest represents one related-articles query.
type SearchRequest struct {
	Query string `json:"query"`
	// Context holds the ids of articles already visible to the caller.
	// Cross edges are computed between the new results and these ids.
	Context []int64 `json:"context,omitempty"`
	// K overrides the configured result count when > 0.
	K     int  `json:"k,omitempty"`
	Debug bool `json:"debug,omitempty"`
}

// SignalBreakdown reports the raw scoring inputs for one result.
// Only populated when the request sets Debug.
type SignalBreakdown struct {
	Semantic   float64 `json:"semantic"`
	PageRank   float64 `json:"pagerank"`
	PageViews  float64 `json:"pageviews"`
	TitleMatch float64 `json:"title_match"`
	Final      float64 `json:"final"`
}

// RankedResult represents one scored article in a search response.
type RankedResult struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	// Score is the display score, round(ScoreFloat*100) in [0,100].
	Score int `json:"score"`
	// ScoreFloat is the fused multisignal score used for ordering.
	ScoreFloat float64          `json:"score_float"`
	Signals    *SignalBreakdown `json:"signals,omitempty"`
}

// Edge represents a similarity relationship between two articles.
// Source and target are titles; the pair is unordered and deduplicated.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Score  float32 `json:"score"`
}

// SearchResponse is the assembled result of one search: the ranked
// articles plus the similarity edges connecting them to each other and
// to the caller's context.
type SearchResponse struct {
	Results    []*RankedResult `json:"results"`
	CrossEdges []*Edge         `json:"cross_edges"`
}
