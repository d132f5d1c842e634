package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

var errNoScheduler = errors.New("job scheduler is not running.")

func jobID(r *http.Request) int {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	return id
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		s.jsonEncode(w, http.StatusServiceUnavailable, errNoScheduler)
		return
	}
	s.jsonEncode(w, http.StatusOK, s.scheduler.Jobs())
}

func (s *Server) activeJob(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		s.jsonEncode(w, http.StatusServiceUnavailable, errNoScheduler)
		return
	}

	id := jobID(r)
	if err := s.scheduler.ActiveJob(id); err != nil {
		s.jsonEncode(w, http.StatusBadRequest, err)
		return
	}
	s.jsonEncode(w, http.StatusOK, fmt.Sprintf("job %d activated.", id))
}

func (s *Server) deactiveJob(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		s.jsonEncode(w, http.StatusServiceUnavailable, errNoScheduler)
		return
	}

	id := jobID(r)
	if err := s.scheduler.DeactiveJob(id); err != nil {
		s.jsonEncode(w, http.StatusBadRequest, err)
		return
	}
	s.jsonEncode(w, http.StatusOK, fmt.Sprintf("job %d deactivated.", id))
}

func (s *Server) deactiveAll(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		s.jsonEncode(w, http.StatusServiceUnavailable, errNoScheduler)
		return
	}

	n, err := s.scheduler.DeactiveAll()
	if err != nil {
		s.jsonEncode(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonEncode(w, http.StatusOK, fmt.Sprintf("%d jobs deactivated.", n))
}

type openAITestRequest struct {
	APIKey string `json:"apiKey"`
	Model  string `json:"model"`
}

func (s *Server) testOpenAI(w http.ResponseWriter, r *http.Request) {
	var req openAITestRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.jsonEncode(w, http.StatusBadRequest, err)
		return
	}

	s.jsonEncode(w, http.StatusOK, s.upstream.Test(r.Context(), req.APIKey, req.Model))
}
