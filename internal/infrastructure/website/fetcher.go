package website

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/toolfinder/backend/internal/domain"
	"github.com/toolfinder/backend/internal/infrastructure/upstream"
)

// maxBodyBytes caps how much of a landing page is parsed
const maxBodyBytes = 1 << 20

// Fetcher extracts a short description from a product's landing page
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a website highlight fetcher
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchHighlight returns the page's og:description, falling back to the
// meta description and then the first non-empty h1. Only http(s) URLs are
// fetched.
func (f *Fetcher) FetchHighlight(ctx context.Context, websiteURL string) (string, error) {
	u, err := url.Parse(websiteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid website url %q", websiteURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ToolFinder/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", u.Host, resp.StatusCode)
	}

	return ExtractHighlight(io.LimitReader(resp.Body, maxBodyBytes))
}

// ExtractHighlight finds the best short description in an HTML document
func ExtractHighlight(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	selectors := []string{
		`meta[property="og:description"]`,
		`meta[name="description"]`,
		`meta[name="twitter:description"]`,
	}
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if text := upstream.PlainText(content); text != "" {
				return text, nil
			}
		}
	}

	var heading string
	doc.Find("h1").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		heading = upstream.PlainText(s.Text())
		return heading == ""
	})
	return heading, nil
}

var _ domain.HighlightFetcher = (*Fetcher)(nil)
