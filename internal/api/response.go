package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yourusername/trade-journal/internal/auth"
	"github.com/yourusername/trade-journal/internal/growth"
	"github.com/yourusername/trade-journal/internal/models"
)

// Response is the envelope of every API reply
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// writeJSON encodes before writing the header so an unencodable payload
// becomes a 500 instead of a truncated success
func (s *Server) writeJSON(w http.ResponseWriter, status int, resp Response) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(resp); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(Response{Success: false, Message: "internal server error"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.WithError(err).Warn("Failed to write response")
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, message string, data interface{}) {
	s.writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// respondError maps domain errors to HTTP statuses. Unmapped errors are
// logged and reported as a generic 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		message = "internal server error"
	}
	s.writeJSON(w, status, Response{Success: false, Message: message})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateKey), errors.Is(err, models.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidID),
		errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, growth.ErrInvalidScenario),
		errors.Is(err, growth.ErrInvalidKellyFraction):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMissingUser), errors.Is(err, auth.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrThrottled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body bounded by the configured size and validates it
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body exceeds %d bytes", models.ErrInvalidInput, maxErr.Limit)
		}
		return fmt.Errorf("%w: malformed JSON: %v", models.ErrInvalidInput, err)
	}
	return models.ValidateRequest(dst)
}
