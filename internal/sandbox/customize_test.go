package sandbox

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestClassify(t *testing.T) {
	cases := []struct {
		api      m.APIType
		template string
		want     Variant
	}{
		{m.AppStoreConnect, "/v1/apps/{app_id}/reviews", AppStoreReviewList},
		{m.AppStoreConnect, "/v1/reviews/{review_id}/response", AppStoreReviewReply},
		{m.GooglePlay, "/androidpublisher/v3/applications/{package_name}/reviews", GooglePlayReviewList},
		{m.GooglePlay, "/androidpublisher/v3/applications/{package_name}/reviews/{review_id}:reply", GooglePlayReply},
		{m.OpenAI, "/v1/chat/completions", ChatCompletion},
		{m.OpenAI, "/v1/models", Passthrough},
		{m.AppStoreConnect, "/v1/apps", Passthrough},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.api, tc.template), tc.template)
	}
}

func TestCustomizeAppStoreListInjectsReviewAndLink(t *testing.T) {
	stored := []byte(`{"data":[],"links":{"next":"n"},"meta":{"paging":{"total":1}}}`)
	original := string(stored)

	raw, err := Customize(m.AppStoreConnect, "/v1/apps/{app_id}/reviews", map[string]string{"app_id": "123"}, nil, stored)
	require.NoError(t, err)
	assert.Equal(t, original, string(stored), "stored template must not change")

	out := decode(t, raw)
	data := out["data"].([]any)
	require.Len(t, data, 1)
	review := data[0].(map[string]any)
	assert.Equal(t, "customerReviews", review["type"])

	links := out["links"].(map[string]any)
	assert.Contains(t, links["self"], "123")
	assert.Equal(t, "n", links["next"])
	assert.Contains(t, out, "meta")
}

func TestCustomizeAppStoreListKeepsExistingReviews(t *testing.T) {
	stored := []byte(`{"data":[{"type":"customerReviews","id":"r1","attributes":{"rating":2,"title":"t","body":"b"}}]}`)

	raw, err := Customize(m.AppStoreConnect, "/v1/apps/{app_id}/reviews", map[string]string{"app_id": "9"}, nil, stored)
	require.NoError(t, err)

	out := decode(t, raw)
	data := out["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "r1", data[0].(map[string]any)["id"])
}

func TestCustomizeAppStoreReply(t *testing.T) {
	raw, err := Customize(m.AppStoreConnect, "/v1/reviews/{review_id}/response", map[string]string{"review_id": "777"}, nil, []byte(`{}`))
	require.NoError(t, err)

	var out struct {
		Data AppStoreReviewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "PUBLISHED", out.Data.Attributes.State)
	assert.Equal(t, defaultAppReply, out.Data.Attributes.ResponseBody)
	require.NotNil(t, out.Data.Relationships)
	assert.Equal(t, "777", out.Data.Relationships.Review.Data.ID)

	body := []byte(`{"data":{"attributes":{"responseBody":"We fixed it!"}}}`)
	raw, err = Customize(m.AppStoreConnect, "/v1/reviews/{review_id}/response", map[string]string{"review_id": "777"}, body, []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "We fixed it!", out.Data.Attributes.ResponseBody)

	present := []byte(`{"data":{"type":"customerReviewResponses","id":"fixed","attributes":{"state":"PENDING_PUBLISH"}}}`)
	raw, err = Customize(m.AppStoreConnect, "/v1/reviews/{review_id}/response", map[string]string{"review_id": "777"}, nil, present)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "fixed", out.Data.ID)
	assert.Equal(t, "PENDING_PUBLISH", out.Data.Attributes.State)
}

func TestCustomizeGooglePlayList(t *testing.T) {
	params := map[string]string{"package_name": "com.acme.app"}
	raw, err := Customize(m.GooglePlay, "/androidpublisher/v3/applications/{package_name}/reviews", params, nil, []byte(`{"reviews":[]}`))
	require.NoError(t, err)

	var out struct {
		Reviews         []GooglePlayReview `json:"reviews"`
		TokenPagination TokenPagination    `json:"tokenPagination"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Reviews, 1)
	assert.Equal(t, pageToken("com.acme.app"), out.TokenPagination.NextPageToken)

	raw, err = Customize(m.GooglePlay, "/androidpublisher/v3/applications/{package_name}/reviews", params, nil,
		[]byte(`{"reviews":[],"tokenPagination":{"nextPageToken":"keep"}}`))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "keep", out.TokenPagination.NextPageToken)
}

func TestCustomizeGooglePlayReply(t *testing.T) {
	params := map[string]string{"package_name": "com.acme.app", "review_id": "gp-1"}
	body := []byte(`{"replyText":"Thanks for the feedback"}`)

	raw, err := Customize(m.GooglePlay, "/androidpublisher/v3/applications/{package_name}/reviews/{review_id}:reply", params, body, []byte(`{}`))
	require.NoError(t, err)

	var out struct {
		Result GooglePlayReplyResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "gp-1", out.Result.ReviewID)
	assert.Equal(t, "Thanks for the feedback", out.Result.ReplyText)
}

func TestCustomizeCompletionSynthesizesReply(t *testing.T) {
	body := []byte(`{"model":"gpt-4o","messages":[
		{"role":"system","content":"Draft a reply"},
		{"role":"user","content":"The app crashes when I upload photos"}
	]}`)

	raw, err := Customize(m.OpenAI, "/v1/chat/completions", nil, body, []byte(`{"choices":[]}`))
	require.NoError(t, err)

	var out struct {
		ID      string                 `json:"id"`
		Object  string                 `json:"object"`
		Model   string                 `json:"model"`
		Choices []ChatCompletionChoice `json:"choices"`
		Usage   ChatCompletionUsage    `json:"usage"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "chat.completion", out.Object)
	assert.Equal(t, "gpt-4o", out.Model)
	require.Len(t, out.Choices, 1)
	assert.Equal(t, "assistant", out.Choices[0].Message.Role)
	assert.Equal(t, GenerateReply("The app crashes when I upload photos"), out.Choices[0].Message.Content)
	assert.Equal(t, out.Usage.PromptTokens+out.Usage.CompletionTokens, out.Usage.TotalTokens)
	assert.NotEmpty(t, out.ID)
}

func TestCustomizeCompletionKeepsPopulatedChoice(t *testing.T) {
	stored := []byte(`{"id":"fixed","choices":[{"index":0,"message":{"role":"assistant","content":"canned"},"finish_reason":"stop"}]}`)
	body := []byte(`{"messages":[{"role":"user","content":"thank you"}]}`)

	raw, err := Customize(m.OpenAI, "/v1/chat/completions", nil, body, stored)
	require.NoError(t, err)
	assert.JSONEq(t, string(stored), string(raw))
}

func TestCustomizeCompletionRejectsMalformedBody(t *testing.T) {
	_, err := Customize(m.OpenAI, "/v1/chat/completions", nil, []byte(`{"messages":`), []byte(`{}`))
	assert.Error(t, err)
}

func TestCustomizeRejectsMalformedTemplate(t *testing.T) {
	_, err := Customize(m.AppStoreConnect, "/v1/apps/{app_id}/reviews", nil, nil, []byte(`{"data":`))
	assert.ErrorIs(t, err, ErrMalformedTemplate)

	_, err = Customize(m.AppStoreConnect, "/v1/apps/{app_id}/reviews", nil, nil, []byte(`{"data":"oops"}`))
	assert.ErrorIs(t, err, ErrMalformedTemplate)
}

func TestCustomizePassthroughCopies(t *testing.T) {
	stored := []byte(`[1,2,3]`)
	raw, err := Customize(m.OpenAI, "/v1/models", nil, nil, stored)
	require.NoError(t, err)
	assert.Equal(t, string(stored), string(raw))

	raw[0] = '{'
	assert.Equal(t, "[1,2,3]", string(stored))

	raw, err = Customize(m.OpenAI, "/v1/models", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}
