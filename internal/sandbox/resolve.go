package sandbox

import (
	"context"
	"errors"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/pathmatch"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
)

var (
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrScenarioNotFound = errors.New("scenario not found")
)

// Store is the read side of persistence the sandbox needs.
type Store interface {
	GetEnvironment(ctx context.Context, id uint) (*m.Environment, error)
	FindEndpoint(ctx context.Context, envID uint, apiType m.APIType, path, method string) (*m.Endpoint, error)
	EndpointsFor(ctx context.Context, envID uint, apiType m.APIType, method string) ([]m.Endpoint, error)
	FindScenarioByType(ctx context.Context, endpointID uint, t m.ScenarioType) (*m.Scenario, error)
	DefaultScenario(ctx context.Context, endpointID uint) (*m.Scenario, error)
}

type Resolver struct {
	store   Store
	matcher *pathmatch.Matcher
}

func NewResolver(s Store, matcher *pathmatch.Matcher) *Resolver {
	if matcher == nil {
		matcher = pathmatch.NewMatcher()
	}
	return &Resolver{store: s, matcher: matcher}
}

// ResolveEndpoint prefers an endpoint registered under the literal path.
// Otherwise the first endpoint, in registration order, whose template
// matches path wins. Pattern matches are not ranked by specificity.
func (r *Resolver) ResolveEndpoint(ctx context.Context, envID uint, apiType m.APIType, path, method string) (*m.Endpoint, error) {
	ep, err := r.store.FindEndpoint(ctx, envID, apiType, path, method)
	if err == nil {
		return ep, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	candidates, err := r.store.EndpointsFor(ctx, envID, apiType, method)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if _, ok := r.matcher.Match(candidates[i].Path, path); ok {
			return &candidates[i], nil
		}
	}
	return nil, ErrEndpointNotFound
}

// Params extracts the path parameters of path under ep's template.
func (r *Resolver) Params(ep *m.Endpoint, path string) map[string]string {
	params, ok := r.matcher.Match(ep.Path, path)
	if !ok {
		return map[string]string{}
	}
	return params
}

// ResolveScenario returns the scenario of the requested type, or the
// endpoint's default when requested is empty.
func (r *Resolver) ResolveScenario(ctx context.Context, endpointID uint, requested m.ScenarioType) (*m.Scenario, error) {
	var (
		sc  *m.Scenario
		err error
	)
	if requested != "" {
		sc, err = r.store.FindScenarioByType(ctx, endpointID, requested)
	} else {
		sc, err = r.store.DefaultScenario(ctx, endpointID)
	}

	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrScenarioNotFound
	}
	return sc, err
}
