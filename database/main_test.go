package database

import (
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/wikigraph/relata/helper"
	loadSql "github.com/wikigraph/relata/sql"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	db := helper.NewTestDatabase(dbConfig)

	err = loadSql.Init(db.Instance)
	require.NoError(t, err)

	return db
}

func initHandlers(t *testing.T) (*ArticlesDBHandler, *VectorsDBHandler) {
	db := initDB(t)

	articles, err := NewArticlesDBHandler(db, true)
	require.NoError(t, err)

	vectors, err := NewVectorsDBHandler(db, 384, true)
	require.NoError(t, err)

	return articles, vectors
}

// testVector builds a deterministic embedding whose first component
// dominates, so inner-product ordering in tests is easy to reason about.
func testVector(scale float32) []float32 {
	v := make([]float32, 384)
	v[0] = scale
	return v
}

func float64Ptr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64       { return &v }
