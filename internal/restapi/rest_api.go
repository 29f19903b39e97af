package restapi

import (
	"net/http"

	"github.com/laiyunwu/casestudy12/internal/app"
)

// RestAPI serves the dashboard's JSON API on top of the shared Application.
type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with its per-key rate limiter
// initialized from the application config.
func NewRestAPI(application *app.Application) *RestAPI {
	return &RestAPI{
		Application: application,
		rateLimiter: NewRateLimitMiddleware(application.Config.RateLimit, application.Config.RateBurst),
	}
}

// RateLimit applies the API's per-key rate limiter to next.
func (api *RestAPI) RateLimit(next http.Handler) http.Handler {
	return api.rateLimiter.Handler(next)
}

// Stop halts the rate limiter's background cleanup.
func (api *RestAPI) Stop() {
	api.rateLimiter.Stop()
}
