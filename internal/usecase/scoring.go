package usecase

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/toolfinder/backend/internal/domain"
)

// FieldWeights holds the points awarded each time a criteria keyword is found
// in a text field
type FieldWeights struct {
	Name        float64
	Tagline     float64
	Topic       float64
	Description float64
}

// DefaultFieldWeights is the tuned weight table used by the service
var DefaultFieldWeights = FieldWeights{
	Name:        50,
	Tagline:     30,
	Topic:       20,
	Description: 15,
}

// perToken is the most a single keyword can earn: a hit in every field
func (w FieldWeights) perToken() float64 {
	return w.Name + w.Tagline + w.Topic + w.Description
}

func (w FieldWeights) smallest() float64 {
	return min(w.Name, w.Tagline, w.Topic, w.Description)
}

// Popularity caps. Each metric is bounded on its own so no single one can
// carry a record, and their sum stays below the smallest field weight so a
// single extra keyword hit always outranks any popularity difference.
const (
	votesPerPoint   = 100.0
	maxVotePoints   = 5.0
	reviewsPerPoint = 50.0
	maxReviewPoints = 4.0
	maxRatingPoints = 5.0 // rating is on a 0-5 scale, one point per star

	maxPopularity = maxVotePoints + maxReviewPoints + maxRatingPoints
)

// Ranker scores and orders product records against free-text criteria.
// It holds no mutable state and is safe for concurrent use.
type Ranker struct {
	weights FieldWeights
}

// NewRanker creates a ranker using the given weight table. Tables whose
// smallest weight does not exceed the maximum popularity contribution are
// rejected in favour of DefaultFieldWeights.
func NewRanker(weights FieldWeights) *Ranker {
	if weights.smallest() <= maxPopularity {
		weights = DefaultFieldWeights
	}
	return &Ranker{weights: weights}
}

// MaxRawScore is the highest achievable raw score for a criteria string with
// tokenCount usable keywords: every keyword hit in every field plus a
// saturated popularity contribution.
func (r *Ranker) MaxRawScore(tokenCount int) float64 {
	return float64(tokenCount)*r.weights.perToken() + maxPopularity
}

// Rank filters, scores and orders records for the given criteria.
//
// Records below filters.MinRating are dropped first. When the criteria yield
// at least one keyword, records matching none of them are excluded; when they
// yield none, every record passes and ordering falls back to popularity.
// Results are sorted by score descending, then popularity count descending,
// then input order.
func (r *Ranker) Rank(records []domain.ProductRecord, criteria string, filters domain.Filters) []domain.RankedResult {
	tokens := TokenizeCriteria(criteria)
	maxRaw := r.MaxRawScore(len(tokens))

	results := make([]domain.RankedResult, 0, len(records))
	for _, record := range records {
		if filters.MinRating > 0 && sanitize(record.RatingValue) < filters.MinRating {
			continue
		}

		relevance, matches := r.relevance(record, tokens)
		if len(tokens) > 0 && relevance == 0 {
			continue
		}

		raw := relevance + popularityContribution(record)
		score := math.Max(0, math.Min(raw/maxRaw*100, 100))

		ranked := domain.RankedResult{
			ProductRecord:  record,
			RelevanceScore: relevance,
			Score:          score,
			KeywordMatches: matches,
		}
		ranked.Topics = slices.Clone(record.Topics)
		results = append(results, ranked)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PopularityCount > results[j].PopularityCount
	})

	return results
}

// relevance sums the field weight for every keyword found in every field and
// counts the individual hits
func (r *Ranker) relevance(record domain.ProductRecord, tokens []string) (float64, int) {
	if len(tokens) == 0 {
		return 0, 0
	}

	fields := []struct {
		text   string
		weight float64
	}{
		{strings.ToLower(record.Name), r.weights.Name},
		{strings.ToLower(record.Tagline), r.weights.Tagline},
		{strings.ToLower(strings.Join(record.Topics, " ")), r.weights.Topic},
		{strings.ToLower(record.Description), r.weights.Description},
	}

	var score float64
	var matches int
	for _, token := range tokens {
		for _, field := range fields {
			if field.text != "" && strings.Contains(field.text, token) {
				score += field.weight
				matches++
			}
		}
	}

	return score, matches
}

// popularityContribution combines vote count, review count and rating, each
// capped individually
func popularityContribution(record domain.ProductRecord) float64 {
	votes := math.Min(float64(max(record.PopularityCount, 0))/votesPerPoint, maxVotePoints)
	reviews := math.Min(float64(max(record.RatingCount, 0))/reviewsPerPoint, maxReviewPoints)
	rating := math.Min(sanitize(record.RatingValue), maxRatingPoints)
	return votes + reviews + rating
}

// sanitize maps NaN and negative values to zero
func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
