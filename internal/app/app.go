// Package app builds the recommendation pipeline from configuration. Both
// the HTTP server and the command-line client start here.
package app

import (
	"github.com/rs/zerolog"

	"github.com/toolfinder/backend/config"
	"github.com/toolfinder/backend/internal/domain"
	"github.com/toolfinder/backend/internal/infrastructure/g2"
	"github.com/toolfinder/backend/internal/infrastructure/producthunt"
	"github.com/toolfinder/backend/internal/infrastructure/upstream"
	"github.com/toolfinder/backend/internal/infrastructure/website"
	"github.com/toolfinder/backend/internal/usecase"
)

// NewMarketplace builds the adapter for the configured provider. Provider
// names are checked by config.Load; anything else falls back to Product Hunt.
func NewMarketplace(cfg *config.Config, log zerolog.Logger) domain.MarketplaceClient {
	fetch := upstream.FetchConfig{
		MaxRecords:  cfg.Fetch.MaxRecords,
		MaxRequests: cfg.Fetch.MaxRequests,
		PageSize:    cfg.Fetch.PageSize,
		PageDelay:   cfg.Fetch.PageDelay,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		Timeout:     cfg.Fetch.Timeout,
	}

	switch cfg.Marketplace.Provider {
	case config.ProviderG2:
		log.Info().Str("base_url", cfg.G2.BaseURL).Msg("using G2 marketplace")
		return g2.NewClient(cfg.G2.Token, cfg.G2.BaseURL, fetch, log)
	default:
		log.Info().Str("base_url", cfg.ProductHunt.BaseURL).Msg("using Product Hunt marketplace")
		return producthunt.NewClient(cfg.ProductHunt.Token, cfg.ProductHunt.BaseURL, fetch, log)
	}
}

// NewHighlightFetcher returns nil when enrichment is disabled
func NewHighlightFetcher(cfg *config.Config, log zerolog.Logger) domain.HighlightFetcher {
	if !cfg.Enrichment.Enabled {
		return nil
	}
	log.Info().Dur("timeout", cfg.Enrichment.Timeout).Msg("website highlights enabled")
	return website.NewFetcher(cfg.Enrichment.Timeout)
}

// NewRecommendationService wires the marketplace, highlight fetcher and
// ranking engine together
func NewRecommendationService(cfg *config.Config, log zerolog.Logger) *usecase.RecommendationService {
	return usecase.NewRecommendationService(
		NewMarketplace(cfg, log),
		NewHighlightFetcher(cfg, log),
		usecase.RecommendationServiceConfig{
			Weights:          usecase.DefaultFieldWeights,
			HighlightTimeout: cfg.Enrichment.Timeout,
		},
		log,
	)
}
