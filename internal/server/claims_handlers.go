package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/RameshMYatnalli/new-claimsat/internal/claims"
	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	var input models.ClaimInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	c, err := s.svc.Claims.CreateClaim(r.Context(), input)
	if err != nil {
		s.fail(w, r, "create claim", err)
		return
	}
	s.respondOK(w, http.StatusCreated, c, "Claim created successfully")
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.fail(w, r, "list claims", err)
		return
	}
	filter := models.ClaimFilter{
		Status:     models.ClaimStatus(r.URL.Query().Get("status")),
		DisasterID: r.URL.Query().Get("disaster_id"),
		Limit:      limit,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown claim status %q", filter.Status))
		return
	}
	list, err := s.svc.Claims.ListClaims(r.Context(), filter)
	if err != nil {
		s.fail(w, r, "list claims", err)
		return
	}
	s.respondOK(w, http.StatusOK, map[string]any{"claims": list, "count": len(list)}, "")
}

func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Claims.GetClaim(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "get claim", err)
		return
	}
	s.respondOK(w, http.StatusOK, c, "")
}

func (s *Server) handleUploadEvidence(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(r.RemoteAddr) {
		s.respondError(w, http.StatusTooManyRequests, "upload rate exceeded, retry later")
		return
	}
	claimID := chi.URLParam(r, "id")
	maxBytes := s.config.Server.MaxUploadBytes
	if r.ContentLength > maxBytes {
		s.respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", maxBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			s.respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", maxBytes))
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, "read upload", err)
		return
	}

	up := claims.Upload{
		Filename:    header.Filename,
		Data:        data,
		CaptureTime: r.FormValue("capture_time"),
	}
	if raw := r.FormValue("location"); raw != "" {
		var loc geo.Point
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			s.respondError(w, http.StatusBadRequest, "location must be JSON {\"lat\":..,\"lng\":..}")
			return
		}
		up.Location = &loc
	}

	s.logger.Debug("evidence upload", zap.String("claim_id", claimID), zap.String("filename", up.Filename), zap.Int("size", len(data)))
	ev, err := s.svc.Claims.AddEvidence(r.Context(), claimID, up)
	if err != nil {
		s.fail(w, r, "add evidence", err)
		return
	}
	s.respondOK(w, http.StatusCreated, ev, "Evidence uploaded successfully")
}

func (s *Server) handleScoreClaim(w http.ResponseWriter, r *http.Request) {
	score, err := s.svc.Claims.ScoreClaim(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "score claim", err)
		return
	}
	s.respondOK(w, http.StatusOK, score, "Claim scored successfully")
}

func (s *Server) handleListClaimEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.Claims.ListEvents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "list claim events", err)
		return
	}
	s.respondOK(w, http.StatusOK, map[string]any{"events": events, "count": len(events)}, "")
}
