package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/RameshMYatnalli/new-claimsat/internal/evidence"
	"github.com/RameshMYatnalli/new-claimsat/internal/media"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Storage.Stats(r.Context())
	if err != nil {
		s.logger.Error("status: stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]any{
		"stats":  stats,
		"config": map[string]any{
			"storage_driver":         s.config.Storage.Driver,
			"media_driver":           s.config.Media.Driver,
			"min_confidence":         s.config.Matching.MinConfidence,
			"inbox_directories":      s.config.Inbox.Directories,
			"sweep_enabled":          s.config.Sweep.Enabled,
			"sweep_schedule":         s.config.Sweep.Schedule,
			"max_upload_bytes":       s.config.Server.MaxUploadBytes,
			"upload_rate_per_second": s.config.Server.UploadRatePerSecond,
		},
	}
	s.respondOK(w, http.StatusOK, resp, "")
}

// decodeJSON reads a JSON request body into v, writing a 400 on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", models.ErrValidation)
	}
	return n, nil
}

func (s *Server) queryMinConfidence(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("min_confidence")
	if raw == "" {
		return s.config.Matching.MinConfidence, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("%w: min_confidence must be a number in [0,100]", models.ErrValidation)
	}
	return v, nil
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrValidation), errors.Is(err, evidence.ErrInvalidMedia):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, media.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status its kind maps to. Server errors are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Debug(op+" rejected", zap.Int("status", status), zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondOK(w http.ResponseWriter, status int, data any, message string) {
	s.respondJSON(w, status, models.Response{Success: true, Data: data, Message: message})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
