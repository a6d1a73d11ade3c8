package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/silens-indexer/internal/service"
)

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	in := service.ProposalListInput{
		Status:       queryProposalStatusPtr(r),
		ProposalType: queryProposalTypePtr(r),
		Executed:     queryBoolPtr(r, "executed"),
		Page:         parsePage(r),
	}

	out, err := s.proposalService.List(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid proposal id")
		return
	}

	out, err := s.proposalService.Detail(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListProposalVotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid proposal id")
		return
	}

	out, err := s.proposalService.Votes(r.Context(), id, queryBoolPtr(r, "support"), parsePage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
