package server

import (
	"net/http"
	"strconv"

	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleRegisterMissingPerson(w http.ResponseWriter, r *http.Request) {
	var input models.MissingPersonInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	p, err := s.svc.Reunify.RegisterMissingPerson(r.Context(), input)
	if err != nil {
		s.fail(w, r, "register missing person", err)
		return
	}
	s.respondOK(w, http.StatusCreated, p, "Missing person registered successfully")
}

func (s *Server) handleRegisterSurvivor(w http.ResponseWriter, r *http.Request) {
	var input models.SurvivorInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	sv, err := s.svc.Reunify.RegisterSurvivor(r.Context(), input)
	if err != nil {
		s.fail(w, r, "register survivor", err)
		return
	}
	s.respondOK(w, http.StatusCreated, sv, "Survivor registered successfully")
}

func (s *Server) handleGetMissingPerson(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Reunify.GetMissingPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "get missing person", err)
		return
	}
	s.respondOK(w, http.StatusOK, p, "")
}

func (s *Server) handleGetSurvivor(w http.ResponseWriter, r *http.Request) {
	sv, err := s.svc.Reunify.GetSurvivor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "get survivor", err)
		return
	}
	s.respondOK(w, http.StatusOK, sv, "")
}

func personFilter(r *http.Request) (models.PersonFilter, error) {
	limit, err := queryLimit(r)
	if err != nil {
		return models.PersonFilter{}, err
	}
	statuses, err := models.ParseStatuses(r.URL.Query().Get("status"))
	if err != nil {
		return models.PersonFilter{}, err
	}
	return models.PersonFilter{
		DisasterID: r.URL.Query().Get("disaster_id"),
		Statuses:   statuses,
		Limit:      limit,
	}, nil
}

func (s *Server) handleListMissingPersons(w http.ResponseWriter, r *http.Request) {
	filter, err := personFilter(r)
	if err != nil {
		s.fail(w, r, "list missing persons", err)
		return
	}
	list, err := s.svc.Reunify.ListMissingPersons(r.Context(), filter)
	if err != nil {
		s.fail(w, r, "list missing persons", err)
		return
	}
	s.respondOK(w, http.StatusOK, map[string]any{"missing_persons": list, "count": len(list)}, "")
}

func (s *Server) handleListSurvivors(w http.ResponseWriter, r *http.Request) {
	filter, err := personFilter(r)
	if err != nil {
		s.fail(w, r, "list survivors", err)
		return
	}
	list, err := s.svc.Reunify.ListSurvivors(r.Context(), filter)
	if err != nil {
		s.fail(w, r, "list survivors", err)
		return
	}
	s.respondOK(w, http.StatusOK, map[string]any{"survivors": list, "count": len(list)}, "")
}

func (s *Server) handleMatchesForMissingPerson(w http.ResponseWriter, r *http.Request) {
	minConfidence, err := s.queryMinConfidence(r)
	if err != nil {
		s.fail(w, r, "find matches", err)
		return
	}
	id := chi.URLParam(r, "id")
	matches, err := s.svc.Reunify.FindMatchesForMissingPerson(r.Context(), id, minConfidence)
	if err != nil {
		s.fail(w, r, "find matches", err)
		return
	}
	s.respondOK(w, http.StatusOK, map[string]any{
		"missing_person_id": id,
		"matches":           matches,
		"count":             len(matches),
	}, "")
}

func (s *Server) handleMatchesForSurvivor(w http.ResponseWriter, r *http.Request) {
	minConfidence, err := s.queryMinConfidence(r)
	if err != nil {
		s.fail(w, r, "find matches", err)
		return
	}
	id := chi.URLParam(r, "id")
	matches, err := s.svc.Reunify.FindMatchesForSurvivor(r.Context(), id, minConfidence)
	if err != nil {
		s.fail(w, r, "find matches", err)
		return
	}
	s.respondOK(w, http.StatusOK, map[string]any{
		"survivor_id": id,
		"matches":     matches,
		"count":       len(matches),
	}, "")
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryLimit(r)
	if err != nil {
		s.fail(w, r, "list matches", err)
		return
	}
	filter := models.MatchFilter{DisasterID: q.Get("disaster_id"), Limit: limit}
	if q.Get("min_confidence") != "" {
		if filter.MinConfidence, err = s.queryMinConfidence(r); err != nil {
			s.fail(w, r, "list matches", err)
			return
		}
	}
	if raw := q.Get("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "verified must be true or false")
			return
		}
		filter.Verified = &v
	}
	matches, err := s.svc.Reunify.ListMatches(r.Context(), filter)
	if err != nil {
		s.fail(w, r, "list matches", err)
		return
	}
	s.respondOK(w, http.StatusOK, map[string]any{"matches": matches, "count": len(matches)}, "")
}

func (s *Server) handleVerifyMatch(w http.ResponseWriter, r *http.Request) {
	var v models.Verification
	if !s.decodeJSON(w, r, &v) {
		return
	}
	m, err := s.svc.Reunify.VerifyMatch(r.Context(), chi.URLParam(r, "id"), v)
	if err != nil {
		s.fail(w, r, "verify match", err)
		return
	}
	msg := "Match rejected"
	if m.Verified {
		msg = "Match verified successfully"
	}
	s.respondOK(w, http.StatusOK, m, msg)
}
