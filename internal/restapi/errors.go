package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"transitanalysis.onebusaway.org/internal/logging"
	"transitanalysis.onebusaway.org/internal/models"
)

// errorBody is the version 1 error envelope used for authorization and server errors.
type errorBody struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
}

// invalidAPIKeyResponse sends a 401 Unauthorized response with the required format
// for invalid API key errors
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, http.StatusUnauthorized, "permission denied")
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("path", r.URL.Path))
	api.writeError(w, http.StatusInternalServerError, "internal server error")
}

func (api *RestAPI) writeError(w http.ResponseWriter, code int, text string) {
	setJSONResponseType(w)
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(errorBody{
		Code:        code,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        text,
		Version:     1,
	})
	if err != nil {
		api.logger().Error("failed to encode error response", "error", err)
	}
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}

	setJSONResponseType(w)
	w.WriteHeader(http.StatusBadRequest)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.logger().Error("failed to encode validation error response", "error", err)
	}
}
