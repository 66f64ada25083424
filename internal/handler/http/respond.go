// Package http holds the plain HTTP surface: account, vehicle, status,
// and log routes, plus the three routes that upgrade into a socket
// connection.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/alpadrive/fleet-server/internal/apperr"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a {"error": message} body, choosing the HTTP status from
// err's apperr.Kind when err carries one.
func Error(w http.ResponseWriter, message string, err error) {
	JSON(w, statusFor(err), map[string]string{"error": message})
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindParse:
		return http.StatusNotAcceptable
	case apperr.KindProtocol:
		return http.StatusBadRequest
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
