package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store/storetest"
)

func seedEndpoint(t *testing.T, s *store.Store) (*m.Environment, *m.Endpoint) {
	t.Helper()
	ctx := context.Background()

	env := &m.Environment{Name: "staging", OwnerID: "u1", IsActive: true}
	require.NoError(t, s.CreateEnvironment(ctx, env))

	ep := &m.Endpoint{
		EnvironmentID: env.ID,
		APIType:       m.AppStoreConnect,
		Path:          "/v1/apps/{app_id}/reviews",
		Method:        "GET",
	}
	require.NoError(t, s.CreateEndpoint(ctx, ep))
	return env, ep
}

func countDefaults(t *testing.T, s *store.Store, endpointID uint) int {
	t.Helper()
	scs, err := s.ListScenarios(context.Background(), endpointID)
	require.NoError(t, err)

	n := 0
	for _, sc := range scs {
		if sc.IsDefault {
			n++
		}
	}
	return n
}

func TestCreateDefaultScenarioLeavesSingleDefault(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	_, ep := seedEndpoint(t, s)

	for i, typ := range []m.ScenarioType{m.ScenarioSuccess, m.ScenarioError, m.ScenarioRateLimit, m.ScenarioTimeout} {
		sc := &m.Scenario{EndpointID: ep.ID, Name: string(typ), Type: typ, StatusCode: 200, IsDefault: true}
		require.NoError(t, s.CreateScenario(ctx, sc))
		assert.Equal(t, 1, countDefaults(t, s, ep.ID), "after scenario %d", i)

		def, err := s.DefaultScenario(ctx, ep.ID)
		require.NoError(t, err)
		assert.Equal(t, sc.ID, def.ID)
	}
}

func TestDefaultChangesRepairSeveralDefaults(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	_, ep := seedEndpoint(t, s)

	seed := func() []m.Scenario {
		scs := []m.Scenario{
			{EndpointID: ep.ID, Name: "a", Type: m.ScenarioSuccess, StatusCode: 200, IsDefault: true},
			{EndpointID: ep.ID, Name: "b", Type: m.ScenarioError, StatusCode: 500, IsDefault: true},
		}
		require.NoError(t, s.DB().Create(&scs).Error)
		return scs
	}

	seed()
	require.Equal(t, 2, countDefaults(t, s, ep.ID))
	sc := &m.Scenario{EndpointID: ep.ID, Name: "c", Type: m.ScenarioTimeout, StatusCode: 504, IsDefault: true}
	require.NoError(t, s.CreateScenario(ctx, sc))
	assert.Equal(t, 1, countDefaults(t, s, ep.ID))

	scs := seed()
	require.Equal(t, 3, countDefaults(t, s, ep.ID))
	_, err := s.SetDefaultScenario(ctx, scs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countDefaults(t, s, ep.ID))

	def, err := s.DefaultScenario(ctx, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, scs[1].ID, def.ID)
}

func TestConcurrentSetDefaultLeavesSingleDefault(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	_, ep := seedEndpoint(t, s)

	var ids []uint
	for i := 0; i < 6; i++ {
		sc := &m.Scenario{EndpointID: ep.ID, Name: string(rune('a' + i)), Type: m.ScenarioSuccess, StatusCode: 200}
		require.NoError(t, s.CreateScenario(ctx, sc))
		ids = append(ids, sc.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := s.SetDefaultScenario(ctx, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, countDefaults(t, s, ep.ID))
}

func TestDefaultsArePerEndpoint(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	env, ep := seedEndpoint(t, s)

	other := &m.Endpoint{EnvironmentID: env.ID, APIType: m.OpenAI, Path: "/v1/chat/completions", Method: "POST"}
	require.NoError(t, s.CreateEndpoint(ctx, other))

	require.NoError(t, s.CreateScenario(ctx, &m.Scenario{EndpointID: ep.ID, Name: "a", Type: m.ScenarioSuccess, StatusCode: 200, IsDefault: true}))
	require.NoError(t, s.CreateScenario(ctx, &m.Scenario{EndpointID: other.ID, Name: "b", Type: m.ScenarioSuccess, StatusCode: 200, IsDefault: true}))

	assert.Equal(t, 1, countDefaults(t, s, ep.ID))
	assert.Equal(t, 1, countDefaults(t, s, other.ID))
}

func TestSetAndUpdateDefaultScenario(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	_, ep := seedEndpoint(t, s)

	ok := &m.Scenario{EndpointID: ep.ID, Name: "ok", Type: m.ScenarioSuccess, StatusCode: 200, IsDefault: true}
	bad := &m.Scenario{EndpointID: ep.ID, Name: "bad", Type: m.ScenarioError, StatusCode: 500}
	require.NoError(t, s.CreateScenario(ctx, ok))
	require.NoError(t, s.CreateScenario(ctx, bad))

	got, err := s.SetDefaultScenario(ctx, bad.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
	assert.Equal(t, 1, countDefaults(t, s, ep.ID))

	def, err := s.DefaultScenario(ctx, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, bad.ID, def.ID)

	ok.IsDefault = true
	ok.DelayMs = 250
	require.NoError(t, s.UpdateScenario(ctx, ok))
	assert.Equal(t, 1, countDefaults(t, s, ep.ID))

	def, err = s.DefaultScenario(ctx, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, ok.ID, def.ID)
	assert.Equal(t, 250, def.DelayMs)

	_, err = s.SetDefaultScenario(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFindScenarioByType(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	_, ep := seedEndpoint(t, s)

	require.NoError(t, s.CreateScenario(ctx, &m.Scenario{EndpointID: ep.ID, Name: "limited", Type: m.ScenarioRateLimit, StatusCode: 429}))

	sc, err := s.FindScenarioByType(ctx, ep.ID, m.ScenarioRateLimit)
	require.NoError(t, err)
	assert.Equal(t, 429, sc.StatusCode)

	_, err = s.FindScenarioByType(ctx, ep.ID, m.ScenarioTimeout)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.DefaultScenario(ctx, ep.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEndpointLookups(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	env, ep := seedEndpoint(t, s)

	literal := &m.Endpoint{EnvironmentID: env.ID, APIType: m.AppStoreConnect, Path: "/v1/apps/123/reviews", Method: "GET"}
	require.NoError(t, s.CreateEndpoint(ctx, literal))

	got, err := s.FindEndpoint(ctx, env.ID, m.AppStoreConnect, "/v1/apps/123/reviews", "GET")
	require.NoError(t, err)
	assert.Equal(t, literal.ID, got.ID)

	_, err = s.FindEndpoint(ctx, env.ID, m.AppStoreConnect, "/v1/apps/123/reviews", "POST")
	assert.ErrorIs(t, err, store.ErrNotFound)

	eps, err := s.EndpointsFor(ctx, env.ID, m.AppStoreConnect, "GET")
	require.NoError(t, err)
	require.Len(t, eps, 2)
	assert.Equal(t, ep.ID, eps[0].ID)
	assert.Equal(t, literal.ID, eps[1].ID)

	dup := &m.Endpoint{EnvironmentID: env.ID, APIType: m.AppStoreConnect, Path: "/v1/apps/123/reviews", Method: "GET"}
	assert.ErrorIs(t, s.CreateEndpoint(ctx, dup), store.ErrDuplicate)
}

func TestDeleteEnvironmentCascades(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	env, ep := seedEndpoint(t, s)

	sc := &m.Scenario{EndpointID: ep.ID, Name: "ok", Type: m.ScenarioSuccess, StatusCode: 200, IsDefault: true}
	require.NoError(t, s.CreateScenario(ctx, sc))
	require.NoError(t, s.CreateLog(ctx, &m.LogEntry{EnvironmentID: env.ID, EndpointID: &ep.ID, Method: "GET", Path: "/x", ResponseStatus: 200}))

	require.NoError(t, s.DeleteEnvironment(ctx, env.ID))

	_, err := s.GetEnvironment(ctx, env.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetEndpoint(ctx, ep.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetScenario(ctx, sc.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.CountLogs(ctx, env.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, s.DeleteEnvironment(ctx, env.ID), store.ErrNotFound)
}

func TestUpdateEnvironment(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	env, _ := seedEndpoint(t, s)

	env.IsActive = false
	env.Name = "paused"
	require.NoError(t, s.UpdateEnvironment(ctx, env))

	got, err := s.GetEnvironment(ctx, env.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "paused", got.Name)

	missing := &m.Environment{SimpleModel: m.SimpleModel{ID: 404}, Name: "x"}
	assert.ErrorIs(t, s.UpdateEnvironment(ctx, missing), store.ErrNotFound)
}

func TestLogsListClearAndPrune(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	env, _ := seedEndpoint(t, s)

	old := time.Now().Add(-72 * time.Hour)
	require.NoError(t, s.CreateLog(ctx, &m.LogEntry{EnvironmentID: env.ID, Method: "GET", Path: "/old", CreatedAt: old}))
	require.NoError(t, s.CreateLog(ctx, &m.LogEntry{EnvironmentID: env.ID, Method: "GET", Path: "/new"}))

	entries, err := s.ListLogs(ctx, env.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/new", entries[0].Path)

	pruned, err := s.PruneLogs(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	cleared, err := s.ClearLogs(ctx, env.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
}

func TestListEnvironmentsByOwner(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEnvironment(ctx, &m.Environment{Name: "a", OwnerID: "alice", IsActive: true}))
	require.NoError(t, s.CreateEnvironment(ctx, &m.Environment{Name: "b", OwnerID: "bob", IsActive: true}))

	envs, err := s.ListEnvironments(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, "a", envs[0].Name)

	all, err := s.ListEnvironments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := store.Open("oracle", "")
	assert.Error(t, err)
}
