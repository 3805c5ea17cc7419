package handlers

import (
	"context"
	"errors"
	"net/http"

	"trader-portfolio-api/internal/services"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusForError maps a service error to a status code and a public message
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out."
	case errors.Is(err, services.ErrDataSourceUnavailable):
		return http.StatusInternalServerError, "Failed to connect to data source."
	case errors.Is(err, services.ErrTokenSourceConfig):
		return http.StatusInternalServerError, "Server configuration error."
	case errors.Is(err, services.ErrQuery):
		return http.StatusInternalServerError, "Error querying data."
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
