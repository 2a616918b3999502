package http

import (
	"time"

	"github.com/linkmap/url-shortener/internal/entity"
	"github.com/linkmap/url-shortener/pkg/response"
)

// urlRequest is the body of create and update requests.
// The target is stored as given; only presence is checked.
type urlRequest struct {
	URL string `json:"url" form:"url" validate:"required"`
}

// urlResponse is returned by create and resolve, which do not expose the access counter.
type urlResponse struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	ShortCode string    `json:"shortCode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toURLResponse(url *entity.URL) urlResponse {
	return urlResponse{
		ID:        url.ID,
		URL:       url.OriginalURL,
		ShortCode: url.ShortCode,
		CreatedAt: url.CreatedAt,
		UpdatedAt: url.UpdatedAt,
	}
}

// urlStatsResponse is returned by update, stats and list.
type urlStatsResponse struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	ShortCode   string    `json:"shortCode"`
	AccessCount int64     `json:"accessCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toURLStatsResponse(url *entity.URL) urlStatsResponse {
	return urlStatsResponse{
		ID:          url.ID,
		URL:         url.OriginalURL,
		ShortCode:   url.ShortCode,
		AccessCount: url.AccessCount,
		CreatedAt:   url.CreatedAt,
		UpdatedAt:   url.UpdatedAt,
	}
}

func toURLStatsResponses(urls []*entity.URL) []urlStatsResponse {
	resp := make([]urlStatsResponse, 0, len(urls))
	for _, url := range urls {
		resp = append(resp, toURLStatsResponse(url))
	}
	return resp
}

var (
	urlNotFoundResponse      = response.Error("URL not found")
	redirectNotFoundResponse = response.Error("URL not found or has been deleted")
	emptyURLResponse         = response.Error("URL is required")
	createFailedResponse     = response.Error("Failed to create short URL")
	retrieveFailedResponse   = response.Error("Failed to retrieve URL")
	updateFailedResponse     = response.Error("Failed to update URL")
	deleteFailedResponse     = response.Error("Failed to delete URL")
	statsFailedResponse      = response.Error("Failed to retrieve stats")
	redirectFailedResponse   = response.Error("Failed to redirect to the original URL")
	listFailedResponse       = response.Error("Failed to retrieve URLs")
)
