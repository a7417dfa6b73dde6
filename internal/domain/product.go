package domain

// ProductRecord is a candidate product as returned by a marketplace adapter.
// Fields an upstream does not provide are left at their zero value.
type ProductRecord struct {
	Name            string   `json:"name"`
	Tagline         string   `json:"tagline,omitempty"`
	Description     string   `json:"description,omitempty"`
	PopularityCount int      `json:"popularityCount"` // upvotes or review count, source-dependent
	RatingValue     float64  `json:"ratingValue"`     // 0-5 scale
	RatingCount     int      `json:"ratingCount"`
	SecondaryRating *float64 `json:"secondaryRating,omitempty"` // 0-10 scale, G2 only
	Topics          []string `json:"topics,omitempty"`
	URL             string   `json:"url,omitempty"`
	WebsiteURL      string   `json:"websiteUrl,omitempty"`
	ImageURL        string   `json:"imageUrl,omitempty"`
	Source          string   `json:"source,omitempty"` // "producthunt" or "g2"
}

// RankedResult is a ProductRecord with the scores the ranking engine derived for it
type RankedResult struct {
	ProductRecord
	RelevanceScore float64 `json:"relevanceScore"` // keyword contribution only
	Score          float64 `json:"score"`          // normalized 0-100
	KeywordMatches int     `json:"keywordMatches"`
}

// Justification explains why a result was recommended
type Justification struct {
	Score     int      `json:"score"`
	Highlight string   `json:"highlight"`
	Reasons   []string `json:"reasons"`
	Medal     string   `json:"medal"`
}

// Filters narrows the candidate set. Zero values mean "no filter".
type Filters struct {
	MinRating float64 `json:"minRating,omitempty"`
	Topic     string  `json:"topic,omitempty"`
}

// SearchRequest represents a recommendation request
type SearchRequest struct {
	Criteria  string  `json:"criteria" binding:"required"`
	MinRating float64 `json:"minRating,omitempty"`
	Topic     string  `json:"topic,omitempty"`
}

// Filters returns the filter set carried by the request
func (r *SearchRequest) Filters() Filters {
	return Filters{MinRating: r.MinRating, Topic: r.Topic}
}

// Recommendation is a single entry of the response
type Recommendation struct {
	Rank          int           `json:"rank"`
	Name          string        `json:"name"`
	URL           string        `json:"url"`
	Rating        float64       `json:"rating"`
	ReviewCount   int           `json:"reviewCount"`
	Description   string        `json:"description"`
	ImageURL      string        `json:"imageUrl"`
	Justification Justification `json:"justification"`
}

// RecommendationResponse is the body returned by the recommendations endpoint
type RecommendationResponse struct {
	Results []Recommendation `json:"results"`
	Message string           `json:"message,omitempty"`
}
