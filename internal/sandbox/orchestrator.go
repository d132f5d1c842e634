package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/pathmatch"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
)

// Request is one inbound emulated API call.
type Request struct {
	EnvironmentID uint
	APIType       m.APIType
	Path          string
	Method        string
	// Scenario overrides the endpoint's default scenario when set.
	Scenario m.ScenarioType
	Body     []byte
	Headers  map[string]string
}

// Response describes the synthetic HTTP response. The caller waits Delay
// before writing it.
type Response struct {
	StatusCode int
	Data       json.RawMessage
	Headers    map[string]string
	Delay      time.Duration
}

type Orchestrator struct {
	store    Store
	resolver *Resolver
	logger   *RequestLogger
	log      *slog.Logger
}

func NewOrchestrator(s Store, logger *RequestLogger, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if logger == nil {
		logger = NewRequestLogger(log)
	}
	return &Orchestrator{
		store:    s,
		resolver: NewResolver(s, pathmatch.NewMatcher()),
		logger:   logger,
		log:      log,
	}
}

func (o *Orchestrator) Resolver() *Resolver {
	return o.resolver
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

func failure(status int, msg string) Response {
	data, _ := json.Marshal(map[string]string{
		"error":   http.StatusText(status),
		"message": msg,
	})
	return Response{StatusCode: status, Data: data, Headers: jsonHeaders()}
}

// Respond resolves the endpoint and scenario for req and builds the
// response. Every failure, including panics, is returned as a descriptor.
// Only 2xx scenarios are customized; other status codes return the stored
// template unchanged.
func (o *Orchestrator) Respond(ctx context.Context, req Request) (resp Response) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.log.Error("sandbox request panicked", "panic", r, "api", req.APIType, "path", req.Path)
			resp = failure(http.StatusInternalServerError, "Internal sandbox error")
		}
	}()

	env, err := o.store.GetEnvironment(ctx, req.EnvironmentID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return failure(http.StatusNotFound, fmt.Sprintf("Sandbox environment %d not found", req.EnvironmentID))
	case err != nil:
		return o.internal("load environment", req, err)
	case !env.IsActive:
		return failure(http.StatusBadRequest, "Sandbox environment is not active")
	}

	ep, err := o.resolver.ResolveEndpoint(ctx, env.ID, req.APIType, req.Path, req.Method)
	switch {
	case errors.Is(err, ErrEndpointNotFound):
		return failure(http.StatusNotFound,
			fmt.Sprintf("No sandbox endpoint configured for %s %s (%s)", req.Method, req.Path, req.APIType))
	case err != nil:
		return o.internal("resolve endpoint", req, err)
	}

	params := o.resolver.Params(ep, req.Path)

	sc, err := o.resolver.ResolveScenario(ctx, ep.ID, req.Scenario)
	switch {
	case errors.Is(err, ErrScenarioNotFound):
		resp = failure(http.StatusNotImplemented, noScenarioMessage(req))
		o.record(req, env.ID, &ep.ID, nil, resp, start)
		return resp
	case err != nil:
		return o.internal("resolve scenario", req, err)
	}

	var data json.RawMessage
	switch {
	case sc.StatusCode >= 200 && sc.StatusCode < 300:
		data, err = Customize(req.APIType, ep.Path, params, req.Body, sc.ResponseData)
		if err != nil {
			return o.internal("customize response", req, err)
		}
	case len(sc.ResponseData) == 0:
		data = json.RawMessage("{}")
	case !json.Valid(sc.ResponseData):
		return o.internal("load scenario response", req, ErrMalformedTemplate)
	default:
		data = append(json.RawMessage(nil), sc.ResponseData...)
	}

	resp = Response{
		StatusCode: sc.StatusCode,
		Data:       data,
		Headers:    jsonHeaders(),
		Delay:      time.Duration(sc.DelayMs) * time.Millisecond,
	}
	o.record(req, env.ID, &ep.ID, &sc.ID, resp, start)
	return resp
}

func noScenarioMessage(req Request) string {
	if req.Scenario != "" {
		return fmt.Sprintf("No %q test scenario available for %s %s", req.Scenario, req.Method, req.Path)
	}
	return fmt.Sprintf("No default test scenario available for %s %s", req.Method, req.Path)
}

func (o *Orchestrator) internal(step string, req Request, err error) Response {
	o.log.Error("sandbox request failed", "step", step, "err", err, "api", req.APIType, "path", req.Path)
	return failure(http.StatusInternalServerError, "Internal sandbox error")
}

// record hands the exchange to the request logger without waiting. The
// logged duration includes the simulated delay the caller will apply.
func (o *Orchestrator) record(req Request, envID uint, endpointID, scenarioID *uint, resp Response, start time.Time) {
	var body any
	if len(req.Body) > 0 {
		if json.Valid(req.Body) {
			body = json.RawMessage(req.Body)
		} else {
			body = string(req.Body)
		}
	}

	o.logger.Log(Record{
		EnvironmentID: envID,
		EndpointID:    endpointID,
		ScenarioID:    scenarioID,
		Method:        req.Method,
		Path:          req.Path,
		Headers:       req.Headers,
		Body:          body,
		Status:        resp.StatusCode,
		Response:      resp.Data,
		Duration:      time.Since(start) + resp.Delay,
	})
}
