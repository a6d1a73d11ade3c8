package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	out, err := s.analyticsService.Overview(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleModelAnalytics(w http.ResponseWriter, r *http.Request) {
	out, err := s.analyticsService.Models(r.Context(), r.URL.Query().Get("timeRange"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleReviewAnalytics(w http.ResponseWriter, r *http.Request) {
	out, err := s.analyticsService.Reviews(r.Context(), r.URL.Query().Get("timeRange"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}

	out, err := s.searchService.Search(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("type"), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
