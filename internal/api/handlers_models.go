package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/silens-indexer/internal/service"
)

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	in := service.ModelListInput{
		Status:         queryModelStatusPtr(r),
		Submitter:      r.URL.Query().Get("submitter"),
		IncludeRelated: r.URL.Query().Get("includeRelated") == "true",
		Page:           parsePage(r),
	}

	out, err := s.modelService.List(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid model id")
		return
	}

	out, err := s.modelService.Detail(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListModelReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid model id")
		return
	}

	out, err := s.modelService.ModelReviews(r.Context(), id, queryInt16Ptr(r, "severity"), parsePage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	in := service.ReviewListInput{
		Reviewer: r.URL.Query().Get("reviewer"),
		Severity: queryInt16Ptr(r, "severity"),
		ModelID:  queryUint64Ptr(r, "modelId"),
		Page:     parsePage(r),
	}

	out, err := s.modelService.Reviews(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
