package domain

import "context"

// MarketplaceClient defines the interface for fetching candidate products
// from an upstream marketplace (Product Hunt, G2, ...)
type MarketplaceClient interface {
	FetchCandidates(ctx context.Context, criteria string, filters Filters) ([]ProductRecord, error)
	Name() string
}

// HighlightFetcher retrieves a short descriptive blurb for a product website
type HighlightFetcher interface {
	FetchHighlight(ctx context.Context, websiteURL string) (string, error)
}
