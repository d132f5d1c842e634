package server

import (
	"errors"
	"net/http"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
)

type environmentRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// visible reports whether owner may see env. The demo environment is
// shared by everyone.
func visible(env *m.Environment, owner string) bool {
	return env.ID == m.DemoEnvironmentID || env.OwnerID == owner
}

// writable reports whether owner may change env or anything beneath it.
// Sharing the demo environment does not make it editable.
func writable(env *m.Environment, owner string) bool {
	return env.OwnerID == owner
}

// loadEnvironment fetches the environment named by the id URL param and
// writes the error response itself when it cannot. With write set, a
// visible environment the caller does not own is refused with 403.
func (s *Server) loadEnvironment(w http.ResponseWriter, r *http.Request, write bool) (*m.Environment, bool) {
	id, ok := idParam(r)
	if !ok {
		s.jsonEncode(w, http.StatusBadRequest, errors.New("invalid id."))
		return nil, false
	}
	return s.environment(w, r, id, write)
}

func (s *Server) environment(w http.ResponseWriter, r *http.Request, id uint, write bool) (*m.Environment, bool) {
	ctx, cancel := queryContext(r)
	defer cancel()

	env, err := s.store.GetEnvironment(ctx, id)
	if err == nil && !visible(env, owner(r)) {
		err = store.ErrNotFound
	}
	if err != nil {
		s.storeError(w, "environment", err)
		return nil, false
	}
	if write && !writable(env, owner(r)) {
		s.jsonEncode(w, http.StatusForbidden, errors.New("the demo environment is read-only."))
		return nil, false
	}
	return env, true
}

func (s *Server) listEnvironments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r)
	defer cancel()

	user := owner(r)
	envs, err := s.store.ListEnvironments(ctx, user)
	if err != nil {
		s.storeError(w, "environment", err)
		return
	}

	hasDemo := false
	for _, env := range envs {
		if env.ID == m.DemoEnvironmentID {
			hasDemo = true
		}
	}
	if !hasDemo {
		if demo, err := s.store.GetEnvironment(ctx, m.DemoEnvironmentID); err == nil {
			envs = append([]m.Environment{*demo}, envs...)
		}
	}

	s.jsonEncode(w, http.StatusOK, envs)
}

func (s *Server) createEnvironment(w http.ResponseWriter, r *http.Request) {
	var req environmentRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.jsonEncode(w, http.StatusBadRequest, err)
		return
	}

	env := &m.Environment{
		OwnerID:     owner(r),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		env.IsActive = *req.IsActive
	}

	if errs := env.Validate(); len(errs) != 0 {
		s.jsonEncode(w, http.StatusBadRequest, errs)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := s.provision.CreateEnvironment(ctx, env); err != nil {
		s.storeError(w, "environment", err)
		return
	}

	s.jsonEncode(w, http.StatusCreated, env)
}

func (s *Server) getEnvironment(w http.ResponseWriter, r *http.Request) {
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
	env.Endpoints = eps

	s.jsonEncode(w, http.StatusOK, env)
}

func (s *Server) editEnvironment(w http.ResponseWriter, r *http.Request) {
	env, ok := s.loadEnvironment(w, r, true)
	if !ok {
		return
	}

	req := environmentRequest{Name: env.Name, Description: env.Description}
	if err := decodeBody(w, r, &req); err != nil {
		s.jsonEncode(w, http.StatusBadRequest, err)
		return
	}

	env.Name = req.Name
	env.Description = req.Description
	if req.IsActive != nil {
		env.IsActive = *req.IsActive
	}

	if errs := env.Validate(); len(errs) != 0 {
		s.jsonEncode(w, http.StatusBadRequest, errs)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := s.store.UpdateEnvironment(ctx, env); err != nil {
		s.storeError(w, "environment", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, env)
}

func (s *Server) deleteEnvironment(w http.ResponseWriter, r *http.Request) {
	env, ok := s.loadEnvironment(w, r, false)
	if !ok {
		return
	}

	if env.ID == m.DemoEnvironmentID {
		s.jsonEncode(w, http.StatusForbidden, errors.New("the demo environment cannot be deleted."))
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := s.store.DeleteEnvironment(ctx, env.ID); err != nil {
		s.storeError(w, "environment", err)
		return
	}

	s.jsonEncode(w, http.StatusOK, "deleted.")
}
