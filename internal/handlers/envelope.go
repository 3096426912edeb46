package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vidtube/backend/internal/logging"
)

// Every endpoint replies with the same envelope so clients can branch on
// success without inspecting the HTTP status first.

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type errorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
}

func respond(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

func fail(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr := asAPIError(err)

	logger := logging.FromContext(ctx)
	if apiErr.status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", apiErr.status, "error", err)
	} else {
		logger.Warn("request returned client error", "status", apiErr.status, "message", apiErr.message)
	}

	details := apiErr.details
	if details == nil {
		details = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.status)

	payload := errorEnvelope{
		StatusCode: apiErr.status,
		Message:    apiErr.message,
		Errors:     details,
		Success:    false,
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode error body", "status", apiErr.status, "error", err)
	}
}
