package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"gitlab.com/mcpricing.net/internal/static/errs"
)

type ErrorMessage struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func WriteError(w http.ResponseWriter, err ErrorMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(err)
}

func WriteSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// FromError maps service errors onto HTTP status codes
func FromError(err error) ErrorMessage {
	switch {
	case errors.Is(err, errs.ErrInvalidConfig):
		return ErrorMessage{Message: err.Error(), StatusCode: http.StatusBadRequest}
	case errors.Is(err, errs.ErrOptionNotFound):
		return ErrorMessage{Message: err.Error(), StatusCode: http.StatusNotFound}
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorMessage{Message: "pricing timed out", StatusCode: http.StatusGatewayTimeout}
	case errors.Is(err, context.Canceled):
		return ErrorMessage{Message: "request cancelled", StatusCode: http.StatusServiceUnavailable}
	default:
		return ErrorMessage{Message: "internal error", StatusCode: http.StatusInternalServerError}
	}
}
