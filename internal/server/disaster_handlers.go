package server

import (
	"net/http"

	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateDisaster(w http.ResponseWriter, r *http.Request) {
	var input models.DisasterInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	d, err := s.svc.Disasters.CreateDisaster(r.Context(), input)
	if err != nil {
		s.fail(w, r, "create disaster", err)
		return
	}
	s.respondOK(w, http.StatusCreated, d, "Disaster created successfully")
}

func (s *Server) handleListDisasters(w http.ResponseWriter, r *http.Request) {
	filter := models.DisasterFilter{Status: models.DisasterStatus(r.URL.Query().Get("status"))}
	list, err := s.svc.Disasters.ListDisasters(r.Context(), filter)
	if err != nil {
		s.fail(w, r, "list disasters", err)
		return
	}
	s.respondOK(w, http.StatusOK, map[string]any{"disasters": list, "count": len(list)}, "")
}

func (s *Server) handleGetDisaster(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Disasters.GetDisaster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "get disaster", err)
		return
	}
	s.respondOK(w, http.StatusOK, d, "")
}
