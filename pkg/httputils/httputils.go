package httputils

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/constants"
	"github.com/microfix/dashboard/internal/infrastructure/logger"
)

const CorrelationIDHeader = "X-Correlation-Id"

// APIErrorResponse is the body of every error answer.
type APIErrorResponse struct {
	ResponseTime  time.Time `json:"responseTime"`
	CorrelationId string    `json:"correlationId"`
	Error         string    `json:"error"`
	Message       string    `json:"message"`
}

// GetCorrelationID extracts the correlation ID from the request header
// If not present, generates a new UUID v4
func GetCorrelationID(r *http.Request) string {
	correlationID := r.Header.Get(CorrelationIDHeader)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return correlationID
}

// WriteAPIError writes an error response with metadata using a predefined APIError
func WriteAPIError(w http.ResponseWriter, r *http.Request, apiErr constants.APIError) {
	correlationID := GetCorrelationID(r)

	w.Header().Set(CorrelationIDHeader, correlationID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)

	response := APIErrorResponse{
		ResponseTime:  time.Now().UTC(),
		CorrelationId: correlationID,
		Error:         apiErr.Code,
		Message:       apiErr.Message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode error response", zap.Error(err))
	}
}

// WriteJSON writes data as the bare response body. The correlation id still
// travels in the header.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set(CorrelationIDHeader, GetCorrelationID(r))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode json response", zap.Error(err))
	}
}
