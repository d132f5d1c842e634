package pathmatch

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRecoversSubstitutedValues(t *testing.T) {
	cases := []struct {
		template string
		values   map[string]string
	}{
		{"/v1/apps/{app_id}/reviews", map[string]string{"app_id": "123"}},
		{"/v1/apps/{app_id}/reviews", map[string]string{"app_id": "com.example.app"}},
		{"/v1/reviews/{review_id}/response", map[string]string{"review_id": "a+b*c?(x)"}},
		{
			"/androidpublisher/v3/applications/{package_name}/reviews/{review_id}:reply",
			map[string]string{"package_name": "com.example", "review_id": "gp-42"},
		},
		{"/{a}/{b}/{c}", map[string]string{"a": "1", "b": "two", "c": "$3^"}},
	}

	for _, tc := range cases {
		concrete := tc.template
		for name, value := range tc.values {
			concrete = strings.ReplaceAll(concrete, "{"+name+"}", value)
		}

		params, ok := Compile(tc.template).Match(concrete)
		require.True(t, ok, "template %s should match %s", tc.template, concrete)
		assert.Equal(t, tc.values, params)
	}
}

func TestMatchIsAnchored(t *testing.T) {
	p := Compile("/v1/apps/{app_id}/reviews")

	for _, path := range []string{
		"/v1/apps/123/reviews/extra",
		"/prefix/v1/apps/123/reviews",
		"/v1/apps//reviews",
		"/v1/apps/1/2/reviews",
		"/v1/apps/123/reviewsx",
	} {
		_, ok := p.Match(path)
		assert.False(t, ok, path)
	}
}

func TestLiteralMetacharactersAreEscaped(t *testing.T) {
	p := Compile("/v1/chat.completions")

	_, ok := p.Match("/v1/chatXcompletions")
	assert.False(t, ok)

	params, ok := p.Match("/v1/chat.completions")
	assert.True(t, ok)
	assert.Empty(t, params)
}

func TestParamsInTemplateOrder(t *testing.T) {
	p := Compile("/apps/{package_name}/reviews/{review_id}")
	assert.Equal(t, []string{"package_name", "review_id"}, p.Params())
	assert.Equal(t, "/apps/{package_name}/reviews/{review_id}", p.Template())
}

func TestMatcherCachesPatterns(t *testing.T) {
	m := NewMatcher()
	first := m.Pattern("/v1/apps/{app_id}")
	assert.Same(t, first, m.Pattern("/v1/apps/{app_id}"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			params, ok := m.Match("/v1/things/{id}", "/v1/things/7")
			assert.True(t, ok)
			assert.Equal(t, "7", params["id"])
		}()
	}
	wg.Wait()
}
