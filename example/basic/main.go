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

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	r, err := relata.NewRelata(dbConfig, nil)
	if err != nil {
		log.Fatalf("Failed to create relata: %v", err)
	}
	defer r.Close()

	// Set up the default encoder (all-MiniLM-L6-v2 embeddings)
	if err := r.UseDefaultEncoder(); err != nil {
		log.Fatalf("Failed to set up encoder: %v", err)
	}

	// Index a handful of articles. The encoder embeds the titles.
	articles := []*model.Article{
		{ID: 1, Title: "Graph theory", PageRank: float64Ptr(62), PageViews: int64Ptr(2_100_000)},
		{ID: 2, Title: "Graph coloring", PageRank: float64Ptr(28), PageViews: int64Ptr(380_000)},
		{ID: 3, Title: "Planar graph", PageRank: float64Ptr(24), PageViews: int64Ptr(290_000)},
		{ID: 4, Title: "Seven Bridges of Königsberg", PageRank: float64Ptr(35), PageViews: int64Ptr(750_000)},
		{ID: 5, Title: "Baroque music", PageRank: float64Ptr(41), PageViews: int64Ptr(910_000)},
	}

	fmt.Println("Indexing articles...")
	ctx := context.Background()
	for _, article := range articles {
		if err := r.IndexArticle(ctx, article, nil); err != nil {
			log.Fatalf("Failed to index article %q: %v", article.Title, err)
		}
	}

	// Find articles related to a query
	queryText := "graph theory"
	fmt.Printf("\nQuerying: %s\n", queryText)

	response, err := r.Search(ctx, &model.SearchRequest{Query: queryText, K: 3})
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	// Display results
	fmt.Printf("\nFound %d results:\n", len(response.Results))
	for i, result := range response.Results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Title: %s\n", result.Title)
		fmt.Printf("Score: %d\n", result.Score)
	}

	fmt.Printf("\nCross edges (%d):\n", len(response.CrossEdges))
	for _, edge := range response.CrossEdges {
		fmt.Printf("%s -- %s (%.2f)\n", edge.Source, edge.Target, edge.Score)
	}

	fmt.Println("\nBasic example completed successfully!")
}
