package main

import (
	"context"
	"fmt"
	"log"

	"github.com/wikigraph/relata"
	"github.com/wikigraph/relata/helper"
	"github.com/wikigraph/relata/model"
)

func float64Ptr(v float64) *float64 {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// Custom search configuration: tighter cross-edge threshold, smaller pool
	searchConfig := model.DefaultSearchConfig()
	searchConfig.CrossEdgeThreshold = 0.7
	searchConfig.CandidatePoolSize = 500
	searchConfig.ResultsToReturn = 10

	r, err := relata.NewRelata(dbConfig, searchConfig)
	if err != nil {
		log.Fatalf("Failed to create relata: %v", err)
	}
	defer r.Close()

	if err := r.UseDefaultEncoder(); err != nil {
		log.Fatalf("Failed to set up encoder: %v", err)
	}

	// Index a small corpus spanning two topics, with uneven signal coverage
	articles := []*model.Article{
		{ID: 1, Title: "Graph theory", PageRank: float64Ptr(62), PageViews: int64Ptr(2_100_000), Backlinks: int64Ptr(5400)},
		{ID: 2, Title: "Graph coloring", PageRank: float64Ptr(28), PageViews: int64Ptr(380_000)},
		{ID: 3, Title: "Planar graph", PageRank: float64Ptr(24), PageViews: int64Ptr(290_000)},
		{ID: 4, Title: "List of graph theory topics", PageRank: float64Ptr(18), PageViews: int64Ptr(120_000)},
		{ID: 5, Title: "Category:Graph theory", PageRank: float64Ptr(90), PageViews: int64Ptr(4_800_000)},
		{ID: 6, Title: "Machine learning", PageRank: float64Ptr(71), PageViews: int64Ptr(5_600_000), Backlinks: int64Ptr(9100)},
		{ID: 7, Title: "Neural network"},
	}

	ctx := context.Background()
	fmt.Println("=== Indexing Articles ===")
	for _, article := range articles {
		if err := r.IndexArticle(ctx, article, nil); err != nil {
			log.Fatalf("Failed to index article %q: %v", article.Title, err)
		}
		fmt.Printf("Indexed '%s' (RID: %s)\n", article.Title, article.RID)
	}

	// 1. Plain search
	fmt.Println("\n=== 1. Related Articles ===")
	response, err := r.Search(ctx, &model.SearchRequest{Query: "graph theory"})
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	printResults("graph theory", response)

	// 2. Debug search with per-signal breakdowns
	fmt.Println("\n=== 2. Debug Breakdown ===")
	debugResponse, err := r.Search(ctx, &model.SearchRequest{Query: "graph theory", K: 3, Debug: true})
	if err != nil {
		log.Fatalf("Debug search failed: %v", err)
	}
	for _, result := range debugResponse.Results {
		s := result.Signals
		fmt.Printf("%-28s semantic=%.3f pagerank=%.3f pageviews=%.3f title=%.3f final=%.3f\n",
			result.Title, s.Semantic, s.PageRank, s.PageViews, s.TitleMatch, s.Final)
	}

	// 3. Search with context articles: edges connect new results to them
	fmt.Println("\n=== 3. Search With Context ===")
	contextResponse, err := r.Search(ctx, &model.SearchRequest{Query: "machine learning", Context: []int64{1, 2}})
	if err != nil {
		log.Fatalf("Context search failed: %v", err)
	}
	printResults("machine learning", contextResponse)

	// 4. Index and coverage statistics
	fmt.Println("\n=== 4. Stats ===")
	stats, err := r.Stats(ctx)
	if err != nil {
		log.Fatalf("Stats failed: %v", err)
	}
	fmt.Printf("Vectors: %d\n", stats.Vectors)
	fmt.Printf("Articles: %d (pagerank: %d, pageviews: %d, backlinks: %d)\n",
		stats.Coverage.Articles, stats.Coverage.PageRank, stats.Coverage.PageViews, stats.Coverage.Backlinks)

	// 5. Switch the vector index to IVFFlat
	fmt.Println("\n=== 5. Index Tuning ===")
	err = r.ChangeIndexType(ctx, "ivfflat", map[string]interface{}{"lists": 10})
	if err != nil {
		log.Fatalf("Index change failed: %v", err)
	}
	fmt.Println("Switched vector index to IVFFlat")

	fmt.Println("\nAdvanced example completed successfully!")
}

func printResults(query string, response *model.SearchResponse) {
	fmt.Printf("Results for %q:\n", query)
	for i, result := range response.Results {
		fmt.Printf("%2d. %-30s %3d\n", i+1, result.Title, result.Score)
	}
	fmt.Printf("Cross edges (%d):\n", len(response.CrossEdges))
	for _, edge := range response.CrossEdges {
		fmt.Printf("    %s -- %s (%.2f)\n", edge.Source, edge.Target, edge.Score)
	}
}
