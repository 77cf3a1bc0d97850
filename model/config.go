package model

import (
	"fmt"
	"math"
	"os"

	"github.com/wikigraph/relata/helper"
	"gopkg.in/yaml.v3"
)

// SearchConfig holds all ranking and retrieval parameters. It is built
// once at startup and passed by reference into the scorer and engine so
// both stay pure functions of (signals, config).
type SearchConfig struct {
	// Fusion weights, must sum to 1.
	WeightSemantic   float64 `yaml:"weight_semantic"`
	WeightPageRank   float64 `yaml:"weight_pagerank"`
	WeightPageViews  float64 `yaml:"weight_pageviews"`
	WeightTitleMatch float64 `yaml:"weight_title_match"`

	// Epsilon floors every normalized signal so the geometric mean
	// stays well-defined when a signal is exactly zero.
	Epsilon float64 `yaml:"epsilon"`

	// CrossEdgeThreshold is the minimum similarity for an edge.
	CrossEdgeThreshold float64 `yaml:"cross_edge_threshold"`

	// CandidatePoolSize is the raw nearest-neighbor fetch size. It is
	// deliberately larger than ResultsToReturn because meta pages are
	// filtered out of the pool before ranking.
	CandidatePoolSize int `yaml:"candidate_pool_size"`
	ResultsToReturn   int `yaml:"results_to_return"`

	// EmbeddingDim is the fixed dimension of the encoder and index.
	EmbeddingDim int `yaml:"embedding_dim"`
}

// DefaultSearchConfig returns the calibrated production defaults.
func DefaultSearchConfig() *SearchConfig {
	return &SearchConfig{
		WeightSemantic:     0.30,
		WeightPageRank:     0.50,
		WeightPageViews:    0.15,
		WeightTitleMatch:   0.05,
		Epsilon:            1e-8,
		CrossEdgeThreshold: 0.65,
		CandidatePoolSize:  1000,
		ResultsToReturn:    60,
		EmbeddingDim:       384,
	}
}

// Validate checks the configuration at startup. Any violation is a
// configuration error, not a per-request condition.
func (c *SearchConfig) Validate() error {
	weights := []float64{c.WeightSemantic, c.WeightPageRank, c.WeightPageViews, c.WeightTitleMatch}
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return helper.NewConfigError("validate weights", fmt.Errorf("negative weight: %v", w))
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return helper.NewConfigError("validate weights", fmt.Errorf("weights must sum to 1, got %v", sum))
	}
	if c.Epsilon <= 0 {
		return helper.NewConfigError("validate epsilon", fmt.Errorf("epsilon must be positive, got %v", c.Epsilon))
	}
	if c.CrossEdgeThreshold < 0 || c.CrossEdgeThreshold > 1 {
		return helper.NewConfigError("validate threshold", fmt.Errorf("cross edge threshold must be in [0,1], got %v", c.CrossEdgeThreshold))
	}
	if c.CandidatePoolSize <= 0 {
		return helper.NewConfigError("validate pool size", fmt.Errorf("candidate pool size must be positive, got %d", c.CandidatePoolSize))
	}
	if c.ResultsToReturn <= 0 {
		return helper.NewConfigError("validate result count", fmt.Errorf("results to return must be positive, got %d", c.ResultsToReturn))
	}
	if c.ResultsToReturn > c.CandidatePoolSize {
		return helper.NewConfigError("validate result count", fmt.Errorf("results to return (%d) exceeds candidate pool size (%d)", c.ResultsToReturn, c.CandidatePoolSize))
	}
	if c.EmbeddingDim <= 0 {
		return helper.NewConfigError("validate embedding dim", fmt.Errorf("embedding dimension must be positive, got %d", c.EmbeddingDim))
	}
	return nil
}

// LoadSearchConfig reads a YAML config file over the defaults.
// Fields absent from the file keep their default values.
func LoadSearchConfig(path string) (*SearchConfig, error) {
	config := DefaultSearchConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewConfigError("read config file", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, helper.NewConfigError("parse config file", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
