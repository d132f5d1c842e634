package sandbox

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/pathmatch"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type endpointSeed struct {
	APIType     m.APIType      `yaml:"apiType"`
	Path        string         `yaml:"path"`
	Method      string         `yaml:"method"`
	Description string         `yaml:"description"`
	Scenarios   []scenarioSeed `yaml:"scenarios"`
}

type scenarioSeed struct {
	Name       string         `yaml:"name"`
	Type       m.ScenarioType `yaml:"type"`
	StatusCode int            `yaml:"statusCode"`
	DelayMs    int            `yaml:"delayMs"`
	Default    bool           `yaml:"default"`
	Response   any            `yaml:"response"`
}

// DefaultEndpoints returns a fresh copy of the endpoint set every new
// environment starts with.
func DefaultEndpoints() ([]m.Endpoint, error) {
	var doc struct {
		Endpoints []endpointSeed `yaml:"endpoints"`
	}
	if err := yaml.Unmarshal(defaultsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse default endpoints: %w", err)
	}

	endpoints := make([]m.Endpoint, 0, len(doc.Endpoints))
	for _, seed := range doc.Endpoints {
		ep := m.Endpoint{
			APIType:     seed.APIType,
			Path:        seed.Path,
			Method:      seed.Method,
			Description: seed.Description,
		}

		for _, sc := range seed.Scenarios {
			data, err := json.Marshal(sc.Response)
			if err != nil {
				return nil, fmt.Errorf("encode %s %s scenario %q: %w", seed.Method, seed.Path, sc.Name, err)
			}
			ep.Scenarios = append(ep.Scenarios, m.Scenario{
				Name:         sc.Name,
				Type:         sc.Type,
				StatusCode:   sc.StatusCode,
				DelayMs:      sc.DelayMs,
				IsDefault:    sc.Default,
				ResponseData: data,
			})
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

// Provisioner creates environments with their default endpoint set and
// keeps the demo environment available.
type Provisioner struct {
	store *store.Store
}

func NewProvisioner(s *store.Store) *Provisioner {
	return &Provisioner{store: s}
}

// CreateEnvironment stores env together with the default endpoints and
// scenarios.
func (p *Provisioner) CreateEnvironment(ctx context.Context, env *m.Environment) error {
	endpoints, err := DefaultEndpoints()
	if err != nil {
		return err
	}
	env.Endpoints = endpoints
	return p.store.CreateEnvironment(ctx, env)
}

// AddDefaults provisions any default endpoint that env is missing.
func (p *Provisioner) AddDefaults(ctx context.Context, envID uint) (int, error) {
	existing, err := p.store.ListEndpoints(ctx, envID)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, ep := range existing {
		have[endpointKey(ep)] = true
	}

	defaults, err := DefaultEndpoints()
	if err != nil {
		return 0, err
	}

	added := 0
	for _, ep := range defaults {
		if have[endpointKey(ep)] {
			continue
		}
		ep.EnvironmentID = envID
		if err := p.store.CreateEndpoint(ctx, &ep); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func endpointKey(ep m.Endpoint) string {
	return strings.Join([]string{string(ep.APIType), ep.Method, ep.Path}, " ")
}

// DemoHistorySize is the number of synthetic log entries the demo
// environment is seeded with.
const DemoHistorySize = 12

// EnsureDemo makes the demo environment exist, be active and carry the
// default endpoints and some request history.
func (p *Provisioner) EnsureDemo(ctx context.Context) error {
	env, err := p.store.GetEnvironment(ctx, m.DemoEnvironmentID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		env = &m.Environment{
			SimpleModel: m.SimpleModel{ID: m.DemoEnvironmentID},
			OwnerID:     "demo",
			Name:        "Demo Environment",
			IsActive:    true,
		}
		desc := "Pre-populated sandbox for exploring the emulated review APIs."
		env.Description = &desc
		if err := p.CreateEnvironment(ctx, env); err != nil {
			return err
		}
		if err := p.store.SyncSequences(ctx); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if !env.IsActive {
			env.IsActive = true
			if err := p.store.UpdateEnvironment(ctx, env); err != nil {
				return err
			}
		}
		if _, err := p.AddDefaults(ctx, env.ID); err != nil {
			return err
		}
	}

	n, err := p.store.CountLogs(ctx, env.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return p.SeedHistory(ctx, env.ID, DemoHistorySize)
	}
	return nil
}

var sampleParams = map[string]string{
	"app_id":       "123",
	"review_id":    "1001",
	"package_name": "com.example.reviews",
}

// SeedHistory writes count synthetic log entries spread over the last days,
// cycling through the environment's endpoints and their default scenarios.
func (p *Provisioner) SeedHistory(ctx context.Context, envID uint, count int) error {
	endpoints, err := p.store.ListEndpoints(ctx, envID)
	if err != nil || len(endpoints) == 0 {
		return err
	}

	now := time.Now()
	for i := 0; i < count; i++ {
		ep := endpoints[i%len(endpoints)]
		sc, err := p.store.DefaultScenario(ctx, ep.ID)
		if err != nil {
			continue
		}

		path := concretePath(ep.Path)
		params, _ := pathmatch.Compile(ep.Path).Match(path)
		body, err := Customize(ep.APIType, ep.Path, params, nil, sc.ResponseData)
		if err != nil {
			return err
		}

		entry := &m.LogEntry{
			RequestID:      fmt.Sprintf("demo-%04d", i+1),
			EnvironmentID:  envID,
			EndpointID:     &ep.ID,
			ScenarioID:     &sc.ID,
			Method:         ep.Method,
			Path:           path,
			RequestHeaders: `{"Content-Type":"application/json"}`,
			ResponseStatus: sc.StatusCode,
			ResponseBody:   string(body),
			DurationMs:     int64(sc.DelayMs + 3*i),
			CreatedAt:      now.Add(-time.Duration(count-i) * 3 * time.Hour),
		}
		if err := p.store.CreateLog(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func concretePath(template string) string {
	path := template
	for _, name := range pathmatch.Compile(template).Params() {
		value, ok := sampleParams[name]
		if !ok {
			value = "sample"
		}
		path = strings.ReplaceAll(path, "{"+name+"}", value)
	}
	return path
}
