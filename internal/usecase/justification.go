package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/toolfinder/backend/internal/domain"
)

// Medals awarded to the top three positions
const (
	MedalFirst  = "🥇"
	MedalSecond = "🥈"
	MedalThird  = "🥉"
)

const (
	highlightMaxRunes = 150
	fallbackHighlight = "A strong match for what you described."
)

// Popularity tiers used in the closing reason
const (
	highlyPopularThreshold = 500
	wellRegardedThreshold  = 200
)

// Justify builds the human-readable explanation for a ranked result at the
// given 1-based rank position
func Justify(result domain.RankedResult, rank int) domain.Justification {
	return domain.Justification{
		Score:     int(math.Round(result.Score)),
		Highlight: highlight(result.ProductRecord),
		Reasons:   reasons(result),
		Medal:     medalFor(rank),
	}
}

func highlight(record domain.ProductRecord) string {
	if tagline := strings.TrimSpace(record.Tagline); tagline != "" {
		return tagline
	}
	if description := strings.TrimSpace(record.Description); description != "" {
		runes := []rune(description)
		if len(runes) > highlightMaxRunes {
			return strings.TrimSpace(string(runes[:highlightMaxRunes]))
		}
		return description
	}
	return fallbackHighlight
}

func reasons(result domain.RankedResult) []string {
	var out []string

	if result.PopularityCount > 0 {
		out = append(out, fmt.Sprintf("Backed by %d members of the community", result.PopularityCount))
	}

	switch {
	case result.RatingValue > 0 && result.RatingCount > 0:
		out = append(out, fmt.Sprintf("Rated %.1f/5 across %d reviews", result.RatingValue, result.RatingCount))
	case result.RatingValue > 0:
		out = append(out, fmt.Sprintf("Rated %.1f/5 by its users", result.RatingValue))
	}

	switch {
	case result.PopularityCount > highlyPopularThreshold:
		out = append(out, "A highly popular choice in its category")
	case result.PopularityCount > wellRegardedThreshold:
		out = append(out, "Well-regarded by the people who use it")
	default:
		out = append(out, "Trusted by early adopters")
	}

	if result.KeywordMatches > 0 {
		places := "places"
		if result.KeywordMatches == 1 {
			places = "place"
		}
		out = append(out, fmt.Sprintf("Matches your criteria in %d %s", result.KeywordMatches, places))
	}

	return out
}

func medalFor(rank int) string {
	switch rank {
	case 1:
		return MedalFirst
	case 2:
		return MedalSecond
	case 3:
		return MedalThird
	default:
		return ""
	}
}
