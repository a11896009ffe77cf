package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// rateLimited applies the per-key limiter when one is configured
func (api *RestAPI) rateLimited(h http.Handler) http.Handler {
	if api.rateLimiter == nil {
		return h
	}
	return api.rateLimiter(h)
}

// SetRoutes registers the API endpoints on router
func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/where/current-time.json", api.rateLimited(validateAPIKey(api, api.currentTimeHandler)))
	router.Handler(http.MethodGet, "/api/where/analysis-times.json", api.rateLimited(validateAPIKey(api, api.analysisTimesHandler)))
	router.Handler(http.MethodGet, "/api/where/trip-frequency.json", api.rateLimited(validateAPIKey(api, api.tripFrequencyHandler)))
	router.Handler(http.MethodGet, "/api/where/trip-frequency-for-stop/:id", api.rateLimited(validateAPIKey(api, api.tripFrequencyForStopHandler)))

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

// Handler returns the API with its middleware chain and the metrics endpoint mounted
func (api *RestAPI) Handler() http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	if api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())
	}

	var h http.Handler = router
	h = CompressionMiddleware(h)
	h = api.WithSecurityHeaders(h)
	h = NewRequestLoggingMiddleware(api.Logger, api.Metrics)(h)
	return h
}
