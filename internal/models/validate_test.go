package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironmentValidate(t *testing.T) {
	assert.Empty(t, (&Environment{Name: "Staging"}).Validate())
	assert.Contains(t, (&Environment{Name: "  "}).Validate(), "name")
}

func TestEndpointValidate(t *testing.T) {
	ep := &Endpoint{APIType: OpenAI, Path: "/v1/chat/completions", Method: " post "}
	assert.Empty(t, ep.Validate())
	assert.Equal(t, "POST", ep.Method)

	errs := (&Endpoint{APIType: "itunes", Path: "v1/apps", Method: "TRACE"}).Validate()
	assert.Contains(t, errs, "apiType")
	assert.Contains(t, errs, "path")
	assert.Contains(t, errs, "method")
}

func TestScenarioValidate(t *testing.T) {
	sc := &Scenario{Name: "ok", Type: ScenarioSuccess, StatusCode: 200}
	assert.Empty(t, sc.Validate())
	assert.Equal(t, "{}", string(sc.ResponseData))

	errs := (&Scenario{
		Type:              "flaky",
		StatusCode:        42,
		DelayMs:           -1,
		ResponseData:      []byte(`{"a":`),
		RequestConditions: []byte(`nope`),
	}).Validate()
	for _, field := range []string{"name", "type", "statusCode", "delayMs", "responseData", "requestConditions"} {
		assert.Contains(t, errs, field)
	}
}

func TestEnumValidity(t *testing.T) {
	for _, a := range []APIType{AppStoreConnect, GooglePlay, OpenAI} {
		assert.True(t, a.Valid())
	}
	assert.False(t, APIType("").Valid())

	for _, s := range []ScenarioType{ScenarioSuccess, ScenarioError, ScenarioTimeout, ScenarioRateLimit} {
		assert.True(t, s.Valid())
	}
	assert.False(t, ScenarioType("slow").Valid())
}
