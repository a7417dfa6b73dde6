package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/toolfinder/backend/internal/domain"
	"github.com/toolfinder/backend/internal/metrics"
)

// TopResults is how many ranked products a recommendation returns
const TopResults = 3

// NoResultsMessage is returned alongside an empty result list
const NoResultsMessage = "No products matched your criteria. Try broader keywords or a lower minimum rating."

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	Weights          FieldWeights
	HighlightTimeout time.Duration
}

// RecommendationService turns free-text criteria into the top ranked products
type RecommendationService struct {
	marketplace      domain.MarketplaceClient
	highlights       domain.HighlightFetcher
	ranker           *Ranker
	highlightTimeout time.Duration
	log              zerolog.Logger
}

// NewRecommendationService creates a new recommendation service with dependencies.
// highlights may be nil to disable website highlight lookups.
func NewRecommendationService(
	marketplace domain.MarketplaceClient,
	highlights domain.HighlightFetcher,
	config RecommendationServiceConfig,
	log zerolog.Logger,
) *RecommendationService {
	weights := config.Weights
	if weights == (FieldWeights{}) {
		weights = DefaultFieldWeights
	}

	timeout := config.HighlightTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &RecommendationService{
		marketplace:      marketplace,
		highlights:       highlights,
		ranker:           NewRanker(weights),
		highlightTimeout: timeout,
		log:              log.With().Str("component", "recommendation").Logger(),
	}
}

// Recommend looks up candidates for the request and returns the top matches.
// Flow: validate -> fetch candidates -> rank -> top 3 -> highlights -> justify
func (s *RecommendationService) Recommend(
	ctx context.Context,
	request *domain.SearchRequest,
) (*domain.RecommendationResponse, error) {
	if request == nil || strings.TrimSpace(request.Criteria) == "" {
		metrics.RecommendationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidRequest
	}
	criteria := strings.TrimSpace(request.Criteria)
	filters := request.Filters()

	candidates, err := s.marketplace.FetchCandidates(ctx, criteria, filters)
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			metrics.RecommendationsTotal.WithLabelValues("rate_limited").Inc()
			return nil, err
		}
		metrics.RecommendationsTotal.WithLabelValues("upstream_error").Inc()
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	metrics.CandidateBatchSize.WithLabelValues(s.marketplace.Name()).Observe(float64(len(candidates)))

	start := time.Now()
	ranked := s.ranker.Rank(candidates, criteria, filters)
	metrics.RankDuration.Observe(time.Since(start).Seconds())

	s.log.Debug().
		Str("criteria", criteria).
		Int("candidates", len(candidates)).
		Int("qualifying", len(ranked)).
		Msg("ranked candidates")

	if len(ranked) == 0 {
		metrics.RecommendationsTotal.WithLabelValues("no_results").Inc()
		return &domain.RecommendationResponse{
			Results: []domain.Recommendation{},
			Message: NoResultsMessage,
		}, nil
	}

	top := ranked[:min(TopResults, len(ranked))]
	top = s.withHighlights(ctx, top)

	results := make([]domain.Recommendation, 0, len(top))
	for i, result := range top {
		results = append(results, toRecommendation(result, i+1))
	}

	metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	return &domain.RecommendationResponse{Results: results}, nil
}

// withHighlights fetches website blurbs concurrently for results that have no
// tagline. Lookup failures are logged and skipped. The returned slice is a new
// slice in the same rank order as the input.
func (s *RecommendationService) withHighlights(ctx context.Context, top []domain.RankedResult) []domain.RankedResult {
	out := make([]domain.RankedResult, len(top))
	copy(out, top)

	if s.highlights == nil {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, s.highlightTimeout)
	defer cancel()

	fetched := make([]string, len(out))
	g, gctx := errgroup.WithContext(ctx)
	for i, result := range out {
		if strings.TrimSpace(result.Tagline) != "" || result.WebsiteURL == "" {
			continue
		}
		g.Go(func() error {
			text, err := s.highlights.FetchHighlight(gctx, result.WebsiteURL)
			if err != nil {
				s.log.Warn().
					Err(err).
					Str("product", result.Name).
					Str("website", result.WebsiteURL).
					Msg("highlight lookup failed")
				return nil // non-fatal
			}
			fetched[i] = text
			return nil
		})
	}
	_ = g.Wait()

	for i, text := range fetched {
		if text != "" {
			out[i].Tagline = text
		}
	}
	return out
}

func toRecommendation(result domain.RankedResult, rank int) domain.Recommendation {
	url := result.URL
	if url == "" {
		url = result.WebsiteURL
	}

	return domain.Recommendation{
		Rank:          rank,
		Name:          result.Name,
		URL:           url,
		Rating:        result.RatingValue,
		ReviewCount:   result.RatingCount,
		Description:   result.Description,
		ImageURL:      result.ImageURL,
		Justification: Justify(result, rank),
	}
}
