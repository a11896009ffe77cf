package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"transitanalysis.onebusaway.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter func(http.Handler) http.Handler
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
	}
}

func (api *RestAPI) logger() *slog.Logger {
	if api.Logger == nil {
		return slog.Default()
	}
	return api.Logger
}
