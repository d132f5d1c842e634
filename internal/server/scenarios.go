package server

import (
	"errors"
	"net/http"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

func (s *Server) loadScenario(w http.ResponseWriter, r *http.Request, write bool) (*m.Scenario, bool) {
	id, ok := idParam(r)
	if !ok {
		s.jsonEncode(w, http.StatusBadRequest, errors.New("invalid id."))
		return nil, false
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	sc, err := s.store.GetScenario(ctx, id)
	if err != nil {
		s.storeError(w, "scenario", err)
		return nil, false
	}
	if _, ok := s.endpoint(w, r, sc.EndpointID, write); !ok {
		return nil, false
	}
	return sc, true
}

func (s *Server) listScenarios(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.loadEndpoint(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	scs, err := s.store.ListScenarios(ctx, ep.ID)
	if err != nil {
		s.storeError(w, "scenario", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, scs)
}

func (s *Server) createScenario(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.loadEndpoint(w, r, true)
	if !ok {
		return
	}

	var sc m.Scenario
	if err := decodeBody(w, r, &sc); err != nil {
		s.jsonEncode(w, http.StatusBadRequest, err)
		return
	}
	sc.ID = 0
	sc.EndpointID = ep.ID

	if errs := sc.Validate(); len(errs) != 0 {
		s.jsonEncode(w, http.StatusBadRequest, errs)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := s.store.CreateScenario(ctx, &sc); err != nil {
		s.storeError(w, "scenario", err)
		return
	}

	s.jsonEncode(w, http.StatusCreated, sc)
}

func (s *Server) getScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.loadScenario(w, r, false)
	if !ok {
		return
	}
	s.jsonEncode(w, http.StatusOK, sc)
}

func (s *Server) editScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.loadScenario(w, r, true)
	if !ok {
		return
	}

	id, endpointID := sc.ID, sc.EndpointID
	if err := decodeBody(w, r, sc); err != nil {
		s.jsonEncode(w, http.StatusBadRequest, err)
		return
	}
	sc.ID, sc.EndpointID = id, endpointID

	if errs := sc.Validate(); len(errs) != 0 {
		s.jsonEncode(w, http.StatusBadRequest, errs)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := s.store.UpdateScenario(ctx, sc); err != nil {
		s.storeError(w, "scenario", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, sc)
}

func (s *Server) setDefaultScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.loadScenario(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	updated, err := s.store.SetDefaultScenario(ctx, sc.ID)
	if err != nil {
		s.storeError(w, "scenario", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, updated)
}

func (s *Server) deleteScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.loadScenario(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := s.store.DeleteScenario(ctx, sc.ID); err != nil {
		s.storeError(w, "scenario", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, "deleted.")
}
