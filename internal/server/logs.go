package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	env, ok := s.loadEnvironment(w, r, false)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.jsonEncode(w, http.StatusBadRequest, errors.New("limit must be a positive integer."))
			return
		}
		limit = n
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	entries, err := s.store.ListLogs(ctx, env.ID, limit)
	if err != nil {
		s.storeError(w, "log", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, entries)
}

func (s *Server) clearLogs(w http.ResponseWriter, r *http.Request) {
	env, ok := s.loadEnvironment(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	n, err := s.store.ClearLogs(ctx, env.ID)
	if err != nil {
		s.storeError(w, "log", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, fmt.Sprintf("%d log entries removed.", n))
}
