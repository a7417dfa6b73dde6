package g2

import (
	"strconv"
	"strings"

	"github.com/toolfinder/backend/internal/domain"
	"github.com/toolfinder/backend/internal/infrastructure/upstream"
)

// Source identifies records produced by this adapter
const Source = "g2"

// productsResponse is a JSON:API document of products
type productsResponse struct {
	Data  []productResource `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type productResource struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Attributes productAttributes `json:"attributes"`
}

type productAttributes struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	DetailDescription string   `json:"detail_description"`
	StarRating        float64  `json:"star_rating"` // 0-5
	AvgRating         string   `json:"avg_rating"`  // 0-10, sent as a string
	ReviewCount       int      `json:"review_count"`
	PublicDetailURL   string   `json:"public_detail_url"`
	ImageURL          string   `json:"image_url"`
	Domain            string   `json:"domain"`
	Categories        []string `json:"category_names"`
}

// mapToProductRecord converts a G2 product resource to our domain ProductRecord.
// G2 has no tagline; the review count doubles as the popularity signal.
func mapToProductRecord(p productResource) domain.ProductRecord {
	attrs := p.Attributes

	description := upstream.PlainText(attrs.Description)
	if description == "" {
		description = upstream.PlainText(attrs.DetailDescription)
	}

	record := domain.ProductRecord{
		Name:            strings.TrimSpace(attrs.Name),
		Description:     description,
		PopularityCount: max(attrs.ReviewCount, 0),
		RatingValue:     max(attrs.StarRating, 0),
		RatingCount:     max(attrs.ReviewCount, 0),
		SecondaryRating: parseAvgRating(attrs.AvgRating),
		URL:             attrs.PublicDetailURL,
		WebsiteURL:      websiteFromDomain(attrs.Domain),
		ImageURL:        attrs.ImageURL,
		Source:          Source,
	}

	for _, category := range attrs.Categories {
		if category = strings.TrimSpace(category); category != "" {
			record.Topics = append(record.Topics, category)
		}
	}

	return record
}

func mapProducts(resources []productResource) []domain.ProductRecord {
	records := make([]domain.ProductRecord, 0, len(resources))
	for _, resource := range resources {
		if resource.Attributes.Name == "" {
			continue
		}
		records = append(records, mapToProductRecord(resource))
	}
	return records
}

// parseAvgRating returns nil when the 0-10 rating is absent or malformed
func parseAvgRating(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 10 {
		return nil
	}
	return &v
}

func websiteFromDomain(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}
