package g2

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolfinder/backend/internal/domain"
	"github.com/toolfinder/backend/internal/infrastructure/upstream"
)

func testFetchConfig() upstream.FetchConfig {
	return upstream.FetchConfig{
		MaxRecords:     10,
		MaxRequests:    3,
		PageSize:       2,
		PageDelay:      time.Millisecond,
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
		Timeout:        time.Second,
	}
}

func productsBody(names []string, next string) string {
	data := ""
	for i, name := range names {
		if i > 0 {
			data += ","
		}
		data += fmt.Sprintf(`{"id":"%d","type":"products","attributes":{"name":%q,"description":"Work management for teams","star_rating":4.4,"avg_rating":"8.8","review_count":%d,"public_detail_url":"https://www.g2.com/products/%s","domain":"%s.com"}}`,
			i, name, 100*(i+1), name, name)
	}
	return fmt.Sprintf(`{"data":[%s],"links":{"next":%q}}`, data, next)
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-token", "", upstream.FetchConfig{}, zerolog.Nop())

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, "test-token", client.token)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, Source, client.Name())
}

func TestFetchCandidates_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page[size]"))
		assert.Equal(t, "1", r.URL.Query().Get("page[number]"))
		assert.Equal(t, "Token token=test-token", r.Header.Get("Authorization"))
		assert.Equal(t, jsonAPIMediaType, r.Header.Get("Accept"))

		w.Header().Set("Content-Type", jsonAPIMediaType)
		fmt.Fprint(w, productsBody([]string{"asana", "trello"}, ""))
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL, testFetchConfig(), zerolog.Nop())
	records, err := client.FetchCandidates(context.Background(), "project management", domain.Filters{})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "asana", records[0].Name)
	assert.Equal(t, 4.4, records[0].RatingValue)
	assert.Equal(t, 100, records[0].RatingCount)
	assert.Equal(t, 100, records[0].PopularityCount)
	require.NotNil(t, records[0].SecondaryRating)
	assert.Equal(t, 8.8, *records[0].SecondaryRating)
	assert.Equal(t, "https://asana.com", records[0].WebsiteURL)
	assert.Equal(t, Source, records[0].Source)
}

func TestFetchCandidates_FollowsNextLinks(t *testing.T) {
	var calls int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			fmt.Fprint(w, productsBody([]string{"a", "b"}, server.URL+"/products?page[number]=2&page[size]=2"))
		default:
			assert.Equal(t, "2", r.URL.Query().Get("page[number]"))
			fmt.Fprint(w, productsBody([]string{"c"}, ""))
		}
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL, testFetchConfig(), zerolog.Nop())
	records, err := client.FetchCandidates(context.Background(), "anything", domain.Filters{})

	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchCandidates_CapsRecords(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productsBody([]string{"a", "b"}, server.URL+"/products?page[number]=9"))
	}))
	defer server.Close()

	cfg := testFetchConfig()
	cfg.MaxRecords = 3
	client := NewClient("test-token", server.URL, cfg, zerolog.Nop())
	records, err := client.FetchCandidates(context.Background(), "anything", domain.Filters{})

	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestFetchCandidates_StopsOnEmptyPage(t *testing.T) {
	var calls int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, productsBody(nil, server.URL+"/products?page[number]=2"))
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL, testFetchConfig(), zerolog.Nop())
	records, err := client.FetchCandidates(context.Background(), "anything", domain.Filters{})

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchCandidates_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL, testFetchConfig(), zerolog.Nop())
	_, err := client.FetchCandidates(context.Background(), "anything", domain.Filters{})

	var rlErr *domain.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestFetchCandidates_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, productsBody([]string{"a"}, ""))
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL, testFetchConfig(), zerolog.Nop())
	records, err := client.FetchCandidates(context.Background(), "anything", domain.Filters{})

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchCandidates_Forbidden(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors":[{"title":"forbidden"}]}`)
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL, testFetchConfig(), zerolog.Nop())
	_, err := client.FetchCandidates(context.Background(), "anything", domain.Filters{})

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "status 403")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchCandidates_IgnoresForeignNextLink(t *testing.T) {
	var foreignCalls int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&foreignCalls, 1)
		assert.Empty(t, r.Header.Get("Authorization"), "token leaked to foreign host")
		fmt.Fprint(w, productsBody([]string{"leaked"}, ""))
	}))
	defer foreign.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productsBody([]string{"a", "b"}, foreign.URL+"/products?page[number]=2"))
	}))
	defer server.Close()

	client := NewClient("secret", server.URL, testFetchConfig(), zerolog.Nop())
	records, err := client.FetchCandidates(context.Background(), "anything", domain.Filters{})

	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(0), atomic.LoadInt32(&foreignCalls))
}

func TestFetchCandidates_ResolvesRelativeNextLink(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			fmt.Fprint(w, productsBody([]string{"a", "b"}, "/products?page[number]=2&page[size]=2"))
			return
		}
		assert.Equal(t, "2", r.URL.Query().Get("page[number]"))
		assert.Equal(t, "Token token=test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, productsBody([]string{"c"}, ""))
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL, testFetchConfig(), zerolog.Nop())
	records, err := client.FetchCandidates(context.Background(), "anything", domain.Filters{})

	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResolveNext(t *testing.T) {
	client := NewClient("t", "https://data.g2.com/api/v1", testFetchConfig(), zerolog.Nop())

	assert.Equal(t, "", client.resolveNext(""))
	assert.Equal(t, "https://data.g2.com/api/v1/products?page%5Bnumber%5D=2",
		client.resolveNext("https://data.g2.com/api/v1/products?page%5Bnumber%5D=2"))
	assert.Equal(t, "https://data.g2.com/api/v1/products?page=3", client.resolveNext("/api/v1/products?page=3"))
	assert.Equal(t, "", client.resolveNext("https://evil.example.com/api/v1/products"))
	assert.Equal(t, "", client.resolveNext("http://data.g2.com/api/v1/products"))
}
