package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	out, err := s.userService.Profile(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListUserModels(w http.ResponseWriter, r *http.Request) {
	out, err := s.userService.Models(r.Context(), mux.Vars(r)["address"], parsePage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListUserReviews(w http.ResponseWriter, r *http.Request) {
	out, err := s.userService.Reviews(r.Context(), mux.Vars(r)["address"], parsePage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListUserReputation(w http.ResponseWriter, r *http.Request) {
	out, err := s.userService.Reputation(r.Context(), mux.Vars(r)["address"], parsePage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	out, err := s.userService.Badges(r.Context(), queryInt64Ptr(r, "badgeId"), r.URL.Query().Get("userId"), parsePage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
