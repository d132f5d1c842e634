package server

import (
	"errors"
	"net/http"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

// loadEndpoint fetches the endpoint named by the id URL param along with
// an ownership check on its environment.
func (s *Server) loadEndpoint(w http.ResponseWriter, r *http.Request, write bool) (*m.Endpoint, bool) {
	id, ok := idParam(r)
	if !ok {
		s.jsonEncode(w, http.StatusBadRequest, errors.New("invalid id."))
		return nil, false
	}
	return s.endpoint(w, r, id, write)
}

func (s *Server) endpoint(w http.ResponseWriter, r *http.Request, id uint, write bool) (*m.Endpoint, bool) {
	ctx, cancel := queryContext(r)
	defer cancel()

	ep, err := s.store.GetEndpoint(ctx, id)
	if err != nil {
		s.storeError(w, "endpoint", err)
		return nil, false
	}
	if _, ok := s.environment(w, r, ep.EnvironmentID, write); !ok {
		return nil, false
	}
	return ep, true
}

func (s *Server) listEndpoints(w http.ResponseWriter, r *http.Request) {
	env, ok := s.loadEnvironment(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	eps, err := s.store.ListEndpoints(ctx, env.ID)
	if err != nil {
		s.storeError(w, "endpoint", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, eps)
}

func (s *Server) createEndpoint(w http.ResponseWriter, r *http.Request) {
	env, ok := s.loadEnvironment(w, r, true)
	if !ok {
		return
	}

	var ep m.Endpoint
	if err := decodeBody(w, r, &ep); err != nil {
		s.jsonEncode(w, http.StatusBadRequest, err)
		return
	}
	ep.ID = 0
	ep.EnvironmentID = env.ID

	if errs := ep.Validate(); len(errs) != 0 {
		s.jsonEncode(w, http.StatusBadRequest, errs)
		return
	}
	hasDefault := false
	for i := range ep.Scenarios {
		sc := &ep.Scenarios[i]
		if errs := sc.Validate(); len(errs) != 0 {
			s.jsonEncode(w, http.StatusBadRequest, map[string]any{"scenarios": errs})
			return
		}
		sc.ID = 0
		// only the first scenario marked default keeps the flag
		sc.IsDefault = sc.IsDefault && !hasDefault
		hasDefault = hasDefault || sc.IsDefault
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := s.store.CreateEndpoint(ctx, &ep); err != nil {
		s.storeError(w, "endpoint", err)
		return
	}

	s.jsonEncode(w, http.StatusCreated, ep)
}

func (s *Server) getEndpoint(w http.ResponseWriter, r *http.Request) {
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
	ep.Scenarios = scs

	s.jsonEncode(w, http.StatusOK, ep)
}

func (s *Server) editEndpoint(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.loadEndpoint(w, r, true)
	if !ok {
		return
	}

	id, envID := ep.ID, ep.EnvironmentID
	if err := decodeBody(w, r, ep); err != nil {
		s.jsonEncode(w, http.StatusBadRequest, err)
		return
	}
	ep.ID, ep.EnvironmentID, ep.Scenarios = id, envID, nil

	if errs := ep.Validate(); len(errs) != 0 {
		s.jsonEncode(w, http.StatusBadRequest, errs)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := s.store.UpdateEndpoint(ctx, ep); err != nil {
		s.storeError(w, "endpoint", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, ep)
}

func (s *Server) deleteEndpoint(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.loadEndpoint(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := s.store.DeleteEndpoint(ctx, ep.ID); err != nil {
		s.storeError(w, "endpoint", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, "deleted.")
}
