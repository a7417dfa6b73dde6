package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/toolfinder/backend/internal/domain"
)

// defaultRetryAfterSeconds is reported when a rate limit carries no wait time
const defaultRetryAfterSeconds = 60

// Recommender produces ranked recommendations for a search request
type Recommender interface {
	Recommend(ctx context.Context, request *domain.SearchRequest) (*domain.RecommendationResponse, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommender Recommender
	log         zerolog.Logger
}

// NewHandler creates a new HTTP handler. A nil recommender makes the
// recommendations endpoint answer 501.
func NewHandler(recommender Recommender, log zerolog.Logger) *Handler {
	return &Handler{
		recommender: recommender,
		log:         log,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "toolfinder-backend",
		"version": "1.0.0",
	})
}

// Recommend handles recommendation requests
func (h *Handler) Recommend(c *gin.Context) {
	if h.recommender == nil {
		h.writeError(c, domain.ErrNotConfigured)
		return
	}

	var request domain.SearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "criteria is required"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	request.Criteria = strings.TrimSpace(request.Criteria)
	if request.Criteria == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "criteria is required"})
		return
	}
	if request.MinRating < 0 || request.MinRating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minRating must be between 0 and 5"})
		return
	}

	response, err := h.recommender.Recommend(c.Request.Context(), &request)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// writeError maps domain errors onto HTTP responses
func (h *Handler) writeError(c *gin.Context, err error) {
	var rateLimitErr *domain.RateLimitError

	switch {
	case errors.As(err, &rateLimitErr), errors.Is(err, domain.ErrRateLimited):
		seconds := defaultRetryAfterSeconds
		if rateLimitErr != nil && rateLimitErr.RetryAfter > 0 {
			seconds = int(math.Ceil(rateLimitErr.RetryAfter.Seconds()))
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":      "The marketplace is rate limiting us. Please try again later.",
			"retryAfter": seconds,
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "criteria is required"})
	case errors.Is(err, domain.ErrNotConfigured):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Recommendation service not configured"})
	default:
		h.log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("recommendation failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to fetch products from the marketplace",
		})
	}
}
