package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/laiyunwu/casestudy12/internal/logging"
)

// invalidAPIKeyResponse sends a 401 Unauthorized response for requests with a
// missing or unknown API key.
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.sendEnvelope(w, http.StatusUnauthorized, "permission denied")
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.Logger, "request failed", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))
	api.sendEnvelope(w, http.StatusInternalServerError, "internal server error")
}

func (api *RestAPI) notFoundResponse(w http.ResponseWriter, r *http.Request, text string) {
	if text == "" {
		text = "resource not found"
	}
	api.sendEnvelope(w, http.StatusNotFound, text)
}

func (api *RestAPI) badRequestResponse(w http.ResponseWriter, r *http.Request, text string) {
	api.sendEnvelope(w, http.StatusBadRequest, text)
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.Logger.Error("failed to encode validation error response", "error", err)
	}
}
