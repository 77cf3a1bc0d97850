// Package ranking scores candidate articles by fusing semantic similarity
// with link-graph and popularity signals into a single relevance value.
package ranking

import (
	"math"
	"strings"

	"github.com/wikigraph/relata/model"
)

// metaPagePrefixes are namespace prefixes for non-article pages.
var metaPagePrefixes = []string{
	"wikipedia:",
	"template:",
	"category:",
	"portal:",
	"help:",
	"user:",
	"talk:",
	"file:",
	"mediawiki:",
	"draft:",
}

// metaListingPrefixes mark aggregation pages that are rarely good
// related-article results even though they live in the main namespace.
var metaListingPrefixes = []string{
	"list of",
	"index of",
	"glossary of",
	"timeline of",
	"outline of",
	"history of",
	"bibliography of",
}

// placeIndicators are tokens that suggest a geographic specialization of a
// broader topic, e.g. "Rail transport in France" for the query "Rail transport".
var placeIndicators = []string{
	"africa", "asia", "europe", "america", "states", "kingdom",
	"china", "india", "russia", "france", "germany", "japan",
	"canada", "australia", "brazil", "mexico", "italy", "spain",
	"california", "texas", "york", "london", "paris", "tokyo",
}

// IsMetaPage reports whether a title belongs to a maintenance namespace or is
// a disambiguation page. Such pages are dropped before scoring.
func IsMetaPage(title string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	for _, prefix := range metaPagePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return strings.Contains(lower, "(disambiguation)")
}

// NormalizePageRank maps a raw PageRank value into [0, 1].
// Missing or non-positive values score zero.
func NormalizePageRank(pagerank *float64) float64 {
	if pagerank == nil || *pagerank <= 0 {
		return 0.0
	}
	return clamp01(*pagerank / 100.0)
}

// NormalizePageViews maps a raw monthly view count into [0, 1] on a log
// scale, so that 100 views scores 0.0 and 10 million views scores 1.0.
// Pages below 100 views get a small floor instead of zero.
func NormalizePageViews(pageviews *int64) float64 {
	if pageviews == nil || *pageviews <= 0 {
		return 0.0
	}
	if *pageviews < 100 {
		return 0.1
	}
	return clamp01((math.Log10(float64(*pageviews)) - 2.0) / 5.0)
}

// TitleMatchScore measures lexical overlap between a query and a candidate
// title in [0, 1]. The base is Jaccard overlap of the word sets, boosted for
// exact and substring matches and penalized for geographic specializations,
// year-prefixed titles and meta listing pages.
func TitleMatchScore(query string, title string) float64 {
	queryNorm := normalizeTitle(query)
	titleNorm := normalizeTitle(title)
	if queryNorm == "" || titleNorm == "" {
		return 0.0
	}
	if queryNorm == titleNorm {
		return 1.0
	}

	queryWords := wordSet(queryNorm)
	titleWords := wordSet(titleNorm)
	intersection := 0
	for word := range queryWords {
		if _, ok := titleWords[word]; ok {
			intersection++
		}
	}
	union := len(queryWords) + len(titleWords) - intersection
	if union == 0 {
		return 0.0
	}
	score := float64(intersection) / float64(union)

	if strings.HasPrefix(titleNorm, queryNorm) || strings.Contains(titleNorm, queryNorm) {
		score = math.Min(score*1.5, 1.0)
	}
	if _, suffix, found := strings.Cut(titleNorm, " in "); found && containsPlaceIndicator(suffix) {
		score *= 0.5
	}
	if startsWithYear(titleNorm) {
		score *= 0.4
	}
	for _, prefix := range metaListingPrefixes {
		if strings.HasPrefix(titleNorm, prefix) {
			score *= 0.1
			break
		}
	}

	return clamp01(score)
}

// MultiSignalScore fuses the semantic similarity with popularity and title
// signals via a weighted geometric mean. Zero or negative signals are
// floored at epsilon so a single missing signal dampens rather than
// annihilates the score; the raw similarity is never capped above.
// Obscure pages, weak on both pageviews and PageRank, take an extra penalty.
func MultiSignalScore(semantic float64, article *model.Article, query string, config *model.SearchConfig) float64 {
	pagerankNorm := NormalizePageRank(article.PageRank)
	pageviewsNorm := NormalizePageViews(article.PageViews)
	titleNorm := TitleMatchScore(query, article.Title)

	score := math.Pow(math.Max(semantic, config.Epsilon), config.WeightSemantic) *
		math.Pow(math.Max(pagerankNorm, config.Epsilon), config.WeightPageRank) *
		math.Pow(math.Max(pageviewsNorm, config.Epsilon), config.WeightPageViews) *
		math.Pow(math.Max(titleNorm, config.Epsilon), config.WeightTitleMatch)

	if pageviewsNorm < 0.2 && pagerankNorm < 0.1 {
		score *= 0.5
	}

	return score
}

// Breakdown returns the raw similarity and the normalized signals next to
// the fused score for debug output.
func Breakdown(semantic float64, article *model.Article, query string, config *model.SearchConfig) *model.SignalBreakdown {
	return &model.SignalBreakdown{
		Semantic:   semantic,
		PageRank:   NormalizePageRank(article.PageRank),
		PageViews:  NormalizePageViews(article.PageViews),
		TitleMatch: TitleMatchScore(query, article.Title),
		Final:      MultiSignalScore(semantic, article, query, config),
	}
}

// DisplayScore converts a fused score in [0, 1] to the integer percentage
// shown to callers.
func DisplayScore(score float64) int {
	return int(math.Round(score * 100.0))
}

func normalizeTitle(s string) string {
	return strings.TrimSpace(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

func wordSet(s string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, word := range strings.Fields(s) {
		words[word] = struct{}{}
	}
	return words
}

// containsPlaceIndicator matches place names by substring, so "the
// americas" or "yorkshire" count as geographic suffixes too.
func containsPlaceIndicator(suffix string) bool {
	for _, place := range placeIndicators {
		if strings.Contains(suffix, place) {
			return true
		}
	}
	return false
}

// startsWithYear reports whether the title opens with a four-digit year.
func startsWithYear(title string) bool {
	if len(title) < 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if title[i] < '0' || title[i] > '9' {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
