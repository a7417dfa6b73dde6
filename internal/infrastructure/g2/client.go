package g2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/toolfinder/backend/internal/domain"
	"github.com/toolfinder/backend/internal/infrastructure/upstream"
	"github.com/toolfinder/backend/internal/metrics"
)

// DefaultBaseURL is the G2 v1 REST API root
const DefaultBaseURL = "https://data.g2.com/api/v1"

const (
	jsonAPIMediaType      = "application/vnd.api+json"
	defaultRateLimitWait  = time.Minute
	retryAfterHeader      = "Retry-After"
	maxErrorBodyLogLength = 200
)

// Client handles communication with the G2 REST API
type Client struct {
	httpClient  *http.Client
	token       string
	baseURL     string
	fetch       upstream.FetchConfig
	rateLimiter *rate.Limiter
	log         zerolog.Logger
}

// NewClient creates a new G2 API client
func NewClient(token, baseURL string, fetch upstream.FetchConfig, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	fetch = fetch.WithDefaults()

	return &Client{
		httpClient: &http.Client{
			Timeout: fetch.Timeout,
		},
		token:       token,
		baseURL:     baseURL,
		fetch:       fetch,
		rateLimiter: upstream.NewLimiter(fetch.PageDelay),
		log:         log.With().Str("provider", Source).Logger(),
	}
}

// Name identifies the upstream
func (c *Client) Name() string {
	return Source
}

// FetchCandidates walks the product listing page by page, following
// links.next, until the record or request cap is reached. The listing is not
// searched server-side; criteria are matched by the ranking engine.
func (c *Client) FetchCandidates(ctx context.Context, criteria string, filters domain.Filters) ([]domain.ProductRecord, error) {
	c.log.Debug().Str("criteria", criteria).Msg("fetching candidates")

	var records []domain.ProductRecord
	next := c.firstPageURL(c.fetch.NextPageSize(0))

	for req := 0; req < c.fetch.MaxRequests && next != ""; req++ {
		if c.fetch.NextPageSize(len(records)) == 0 {
			break
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		page, err := c.fetchPage(ctx, next)
		if err != nil {
			if len(records) > 0 {
				c.log.Warn().Err(err).Int("collected", len(records)).Msg("stopping pagination early")
				break
			}
			return nil, err
		}

		if len(page.Data) == 0 {
			break
		}
		records = append(records, mapProducts(page.Data)...)
		next = c.resolveNext(page.Links.Next)
	}

	if len(records) > c.fetch.MaxRecords {
		records = records[:c.fetch.MaxRecords]
	}

	c.log.Info().Int("records", len(records)).Msg("fetched candidates")
	return records, nil
}

// resolveNext turns links.next into an absolute URL on the configured API
// host. Links to any other scheme or host end pagination so the token is
// never sent elsewhere.
func (c *Client) resolveNext(next string) string {
	if next == "" {
		return ""
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(next)
	if err != nil {
		c.log.Warn().Err(err).Msg("ignoring malformed next link")
		return ""
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != base.Scheme || resolved.Host != base.Host {
		c.log.Warn().Str("next_host", resolved.Host).Msg("ignoring next link to a foreign host")
		return ""
	}
	return resolved.String()
}

func (c *Client) firstPageURL(pageSize int) string {
	params := url.Values{}
	params.Set("page[size]", strconv.Itoa(pageSize))
	params.Set("page[number]", "1")
	return fmt.Sprintf("%s/products?%s", c.baseURL, params.Encode())
}

// fetchPage GETs a single listing page, retrying transient failures with
// exponential backoff
func (c *Client) fetchPage(ctx context.Context, pageURL string) (*productsResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= c.fetch.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := upstream.Sleep(ctx, upstream.Backoff(c.fetch.RetryBaseDelay, attempt-1)); err != nil {
				return nil, err
			}
		}

		page, retry, err := c.doRequest(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
		c.log.Warn().Err(err).Int("attempt", attempt).Msg("request failed")
	}

	c.log.Error().Err(lastErr).Msg("all retries failed")
	return nil, lastErr
}

// doRequest executes an HTTP GET with G2 auth headers. The bool result
// reports whether the failure is transient.
func (c *Client) doRequest(ctx context.Context, reqURL string) (*productsResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", jsonAPIMediaType)
	req.Header.Set("Content-Type", jsonAPIMediaType)
	req.Header.Set("User-Agent", "ToolFinder/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Token token="+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(Source, "error").Inc()
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestsTotal.WithLabelValues(Source, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := upstream.RetryAfter(resp.Header, retryAfterHeader, time.Now(), defaultRateLimitWait)
		c.log.Warn().Dur("retry_after", wait).Msg("rate limited")
		return nil, false, &domain.RateLimitError{Provider: Source, RetryAfter: wait}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLogLength))
		err := fmt.Errorf("%w: status %d, body: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, string(body))
		return nil, upstream.Retryable(resp.StatusCode), err
	}

	var page productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstreamUnavailable, err)
	}

	return &page, false, nil
}

var _ domain.MarketplaceClient = (*Client)(nil)
