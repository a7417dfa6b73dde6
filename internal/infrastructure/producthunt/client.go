package producthunt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/toolfinder/backend/internal/domain"
	"github.com/toolfinder/backend/internal/infrastructure/upstream"
	"github.com/toolfinder/backend/internal/metrics"
)

// DefaultBaseURL is the Product Hunt v2 GraphQL endpoint
const DefaultBaseURL = "https://api.producthunt.com/v2/api/graphql"

// rateLimitResetHeader carries seconds until the quota window resets
const rateLimitResetHeader = "X-Rate-Limit-Reset"

const defaultRateLimitWait = 15 * time.Minute

const postsQuery = `query Posts($first: Int!, $after: String, $topic: String) {
  posts(first: $first, after: $after, order: VOTES, topic: $topic) {
    edges {
      node {
        id
        name
        tagline
        description
        votesCount
        reviewsRating
        reviewsCount
        url
        website
        thumbnail { url }
        topics(first: 5) { edges { node { name } } }
      }
    }
    pageInfo { endCursor hasNextPage }
  }
}`

// Client handles communication with the Product Hunt GraphQL API
type Client struct {
	httpClient  *http.Client
	token       string
	baseURL     string
	fetch       upstream.FetchConfig
	rateLimiter *rate.Limiter
	log         zerolog.Logger
}

// NewClient creates a new Product Hunt API client
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

// FetchCandidates pages through top-voted posts until the record or request
// cap is reached. Product Hunt has no free-text search, so criteria are
// matched locally by the ranking engine; filters.Topic narrows the query.
func (c *Client) FetchCandidates(ctx context.Context, criteria string, filters domain.Filters) ([]domain.ProductRecord, error) {
	c.log.Debug().Str("criteria", criteria).Str("topic", filters.Topic).Msg("fetching candidates")

	var records []domain.ProductRecord
	cursor := ""

	for req := 0; req < c.fetch.MaxRequests; req++ {
		first := c.fetch.NextPageSize(len(records))
		if first == 0 {
			break
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		conn, err := c.fetchPage(ctx, first, cursor, filters.Topic)
		if err != nil {
			if len(records) > 0 {
				c.log.Warn().Err(err).Int("collected", len(records)).Msg("stopping pagination early")
				break
			}
			return nil, err
		}

		records = append(records, mapPosts(conn)...)

		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}

	if len(records) > c.fetch.MaxRecords {
		records = records[:c.fetch.MaxRecords]
	}

	c.log.Info().Int("records", len(records)).Msg("fetched candidates")
	return records, nil
}

// fetchPage issues one GraphQL query, retrying transient failures with
// exponential backoff
func (c *Client) fetchPage(ctx context.Context, first int, cursor, topic string) (postConnection, error) {
	variables := map[string]interface{}{"first": first}
	if cursor != "" {
		variables["after"] = cursor
	}
	if topic != "" {
		variables["topic"] = topic
	}

	payload, err := json.Marshal(map[string]interface{}{
		"query":     postsQuery,
		"variables": variables,
	})
	if err != nil {
		return postConnection{}, fmt.Errorf("failed to encode query: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.fetch.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := upstream.Sleep(ctx, upstream.Backoff(c.fetch.RetryBaseDelay, attempt-1)); err != nil {
				return postConnection{}, err
			}
		}

		conn, retry, err := c.doQuery(ctx, payload)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if !retry {
			return postConnection{}, err
		}
		c.log.Warn().Err(err).Int("attempt", attempt).Msg("request failed")
	}

	c.log.Error().Err(lastErr).Msg("all retries failed")
	return postConnection{}, lastErr
}

// doQuery executes a single request. The bool result reports whether the
// failure is transient.
func (c *Client) doQuery(ctx context.Context, payload []byte) (postConnection, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return postConnection{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ToolFinder/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(Source, "error").Inc()
		if ctx.Err() != nil {
			return postConnection{}, false, ctx.Err()
		}
		return postConnection{}, true, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestsTotal.WithLabelValues(Source, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return postConnection{}, true, fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return postConnection{}, false, c.rateLimitError(resp.Header)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d, body: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, truncate(body, 200))
		return postConnection{}, upstream.Retryable(resp.StatusCode), err
	}

	var parsed postsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return postConnection{}, false, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstreamUnavailable, err)
	}

	if len(parsed.Errors) > 0 {
		for _, gqlErr := range parsed.Errors {
			if isRateLimitError(gqlErr) {
				return postConnection{}, false, c.rateLimitError(resp.Header)
			}
		}
		return postConnection{}, false, fmt.Errorf("%w: graphql: %s", domain.ErrUpstreamUnavailable, parsed.Errors[0].Message)
	}

	return parsed.Data.Posts, false, nil
}

func (c *Client) rateLimitError(h http.Header) error {
	wait := upstream.RetryAfter(h, rateLimitResetHeader, time.Now(), defaultRateLimitWait)
	c.log.Warn().Dur("retry_after", wait).Msg("rate limited")
	return &domain.RateLimitError{Provider: Source, RetryAfter: wait}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}

var _ domain.MarketplaceClient = (*Client)(nil)
