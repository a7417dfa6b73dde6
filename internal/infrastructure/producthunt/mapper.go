package producthunt

import (
	"strings"

	"github.com/toolfinder/backend/internal/domain"
	"github.com/toolfinder/backend/internal/infrastructure/upstream"
)

// Source identifies records produced by this adapter
const Source = "producthunt"

// postsResponse mirrors the subset of the GraphQL response we query
type postsResponse struct {
	Data struct {
		Posts postConnection `json:"posts"`
	} `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type postConnection struct {
	Edges []struct {
		Node post `json:"node"`
	} `json:"edges"`
	PageInfo struct {
		EndCursor   string `json:"endCursor"`
		HasNextPage bool   `json:"hasNextPage"`
	} `json:"pageInfo"`
}

type post struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Tagline       string  `json:"tagline"`
	Description   string  `json:"description"`
	VotesCount    int     `json:"votesCount"`
	ReviewsRating float64 `json:"reviewsRating"`
	ReviewsCount  int     `json:"reviewsCount"`
	URL           string  `json:"url"`
	Website       string  `json:"website"`
	Thumbnail     *struct {
		URL string `json:"url"`
	} `json:"thumbnail"`
	Topics struct {
		Edges []struct {
			Node struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"topics"`
}

// mapToProductRecord converts a Product Hunt post to our domain ProductRecord
func mapToProductRecord(p post) domain.ProductRecord {
	record := domain.ProductRecord{
		Name:            strings.TrimSpace(p.Name),
		Tagline:         upstream.PlainText(p.Tagline),
		Description:     upstream.PlainText(p.Description),
		PopularityCount: max(p.VotesCount, 0),
		RatingValue:     max(p.ReviewsRating, 0),
		RatingCount:     max(p.ReviewsCount, 0),
		URL:             p.URL,
		WebsiteURL:      p.Website,
		Source:          Source,
	}

	if p.Thumbnail != nil {
		record.ImageURL = p.Thumbnail.URL
	}

	for _, edge := range p.Topics.Edges {
		if name := strings.TrimSpace(edge.Node.Name); name != "" {
			record.Topics = append(record.Topics, name)
		}
	}

	return record
}

// mapPosts converts every post in a connection page
func mapPosts(conn postConnection) []domain.ProductRecord {
	records := make([]domain.ProductRecord, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		if edge.Node.Name == "" {
			continue
		}
		records = append(records, mapToProductRecord(edge.Node))
	}
	return records
}

// isRateLimitError reports whether a GraphQL error signals throttling
func isRateLimitError(e graphQLError) bool {
	if strings.EqualFold(e.Extensions.Code, "rate_limit_reached") {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "rate limit")
}
