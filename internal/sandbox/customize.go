package sandbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

// Variant tags the response shape an endpoint template produces.
type Variant int

const (
	Passthrough Variant = iota
	AppStoreReviewList
	AppStoreReviewReply
	GooglePlayReviewList
	GooglePlayReply
	ChatCompletion
)

func (v Variant) String() string {
	switch v {
	case AppStoreReviewList:
		return "app_store_review_list"
	case AppStoreReviewReply:
		return "app_store_review_response"
	case GooglePlayReviewList:
		return "google_play_review_list"
	case GooglePlayReply:
		return "google_play_reply"
	case ChatCompletion:
		return "chat_completion"
	}
	return "passthrough"
}

// Classify derives the variant from the api type and the endpoint's path
// template.
func Classify(apiType m.APIType, template string) Variant {
	switch apiType {
	case m.AppStoreConnect:
		switch {
		case strings.HasSuffix(template, "/response"):
			return AppStoreReviewReply
		case strings.Contains(template, "review"):
			return AppStoreReviewList
		}
	case m.GooglePlay:
		switch {
		case strings.HasSuffix(template, ":reply"):
			return GooglePlayReply
		case strings.HasSuffix(template, "/reviews"):
			return GooglePlayReviewList
		}
	case m.OpenAI:
		if strings.HasSuffix(template, "/chat/completions") {
			return ChatCompletion
		}
	}
	return Passthrough
}

var ErrMalformedTemplate = errors.New("malformed scenario response")

const (
	defaultChatModel   = "gpt-4o-mini"
	defaultAppReply    = "Thank you for your feedback! We appreciate you taking the time to share your experience."
	appStoreReviewsURL = "https://api.appstoreconnect.apple.com/v1/apps/%s/customerReviews"
)

// document holds a JSON object whose known fields are decoded into typed
// variants and written back, leaving unknown fields untouched.
type document map[string]json.RawMessage

func (d document) has(key string) bool {
	raw, ok := d[key]
	if !ok {
		return false
	}
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) != 0 && !bytes.Equal(trimmed, []byte("null"))
}

func (d document) get(key string, v any) error {
	if !d.has(key) {
		return nil
	}
	if err := json.Unmarshal(d[key], v); err != nil {
		return fmt.Errorf("%w: field %q: %v", ErrMalformedTemplate, key, err)
	}
	return nil
}

func (d document) set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	d[key] = raw
	return nil
}

// Customize builds the concrete response for one call from the scenario's
// stored response. The stored bytes are decoded afresh and never modified.
func Customize(apiType m.APIType, template string, params map[string]string, body []byte, stored []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(stored)) == 0 {
		stored = []byte("{}")
	}
	if !json.Valid(stored) {
		return nil, ErrMalformedTemplate
	}

	variant := Classify(apiType, template)

	var doc document
	if variant == Passthrough || json.Unmarshal(stored, &doc) != nil {
		out := make(json.RawMessage, len(stored))
		copy(out, stored)
		return out, nil
	}

	var err error
	switch variant {
	case AppStoreReviewList:
		err = customizeAppStoreList(doc, params)
	case AppStoreReviewReply:
		err = customizeAppStoreReply(doc, params, body)
	case GooglePlayReviewList:
		err = customizeGooglePlayList(doc, params)
	case GooglePlayReply:
		err = customizeGooglePlayReply(doc, params, body)
	case ChatCompletion:
		err = customizeCompletion(doc, body)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(doc)
}

func param(params map[string]string, name, fallback string) string {
	if v := params[name]; v != "" {
		return v
	}
	return fallback
}

func customizeAppStoreList(doc document, params map[string]string) error {
	appID := param(params, "app_id", "unknown")

	var reviews []AppStoreReview
	if err := doc.get("data", &reviews); err != nil {
		return err
	}
	if len(reviews) == 0 {
		reviews = []AppStoreReview{sampleAppStoreReview(appID)}
		if err := doc.set("data", reviews); err != nil {
			return err
		}
	}

	var links Links
	if err := doc.get("links", &links); err != nil {
		return err
	}
	links.Self = fmt.Sprintf(appStoreReviewsURL, appID)
	return doc.set("links", links)
}

type appStoreReplyRequest struct {
	Data struct {
		Attributes struct {
			ResponseBody string `json:"responseBody"`
		} `json:"attributes"`
	} `json:"data"`
}

func customizeAppStoreReply(doc document, params map[string]string, body []byte) error {
	var existing AppStoreReviewResponse
	if err := doc.get("data", &existing); err != nil {
		return err
	}
	if existing.ID != "" {
		return nil
	}

	reviewID := param(params, "review_id", "unknown")
	text := defaultAppReply
	var req appStoreReplyRequest
	if json.Unmarshal(body, &req) == nil && req.Data.Attributes.ResponseBody != "" {
		text = req.Data.Attributes.ResponseBody
	}

	resp := AppStoreReviewResponse{
		Type: "customerReviewResponses",
		ID:   "response-" + reviewID,
		Attributes: AppStoreReviewResponseAttributes{
			ResponseBody:     text,
			LastModifiedDate: sampleEpoch.Format("2006-01-02T15:04:05Z07:00"),
			State:            "PUBLISHED",
		},
		Relationships: &AppStoreResponseRelationships{},
	}
	resp.Relationships.Review.Data = ResourceRef{Type: "customerReviews", ID: reviewID}

	return doc.set("data", resp)
}

func customizeGooglePlayList(doc document, params map[string]string) error {
	packageName := param(params, "package_name", "com.example.app")

	var reviews []GooglePlayReview
	if err := doc.get("reviews", &reviews); err != nil {
		return err
	}
	if len(reviews) == 0 {
		if err := doc.set("reviews", []GooglePlayReview{sampleGooglePlayReview(packageName)}); err != nil {
			return err
		}
	}

	if !doc.has("tokenPagination") {
		return doc.set("tokenPagination", TokenPagination{NextPageToken: pageToken(packageName)})
	}
	return nil
}

func shortHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

func pageToken(seed string) string {
	return "sandbox-" + shortHash(seed)
}

func customizeGooglePlayReply(doc document, params map[string]string, body []byte) error {
	if doc.has("result") {
		return nil
	}

	var req struct {
		ReplyText string `json:"replyText"`
	}
	text := defaultAppReply
	if json.Unmarshal(body, &req) == nil && req.ReplyText != "" {
		text = req.ReplyText
	}

	return doc.set("result", GooglePlayReplyResult{
		ReviewID:   param(params, "review_id", "unknown"),
		ReplyText:  text,
		LastEdited: Timestamp{Seconds: sampleEpoch.Unix()},
	})
}

func customizeCompletion(doc document, body []byte) error {
	req, err := parseChatRequest(body)
	if err != nil {
		return err
	}

	var choices []ChatCompletionChoice
	if err := doc.get("choices", &choices); err != nil {
		return err
	}
	if len(choices) > 0 && choices[0].Message.Content != "" {
		return nil
	}

	prompt := lastUserPrompt(req.Messages)
	reply := GenerateReply(prompt)

	model := req.Model
	if model == "" {
		var stored string
		if err := doc.get("model", &stored); err != nil {
			return err
		}
		model = stored
	}
	if model == "" {
		model = defaultChatModel
	}

	fields := map[string]any{
		"object": "chat.completion",
		"model":  model,
		"choices": []ChatCompletionChoice{{
			Index:        0,
			Message:      ChatCompletionText{Role: "assistant", Content: reply},
			FinishReason: "stop",
		}},
		"usage": ChatCompletionUsage{
			PromptTokens:     countTokens(prompt),
			CompletionTokens: countTokens(reply),
			TotalTokens:      countTokens(prompt) + countTokens(reply),
		},
	}
	if !doc.has("id") {
		fields["id"] = "chatcmpl-" + shortHash(prompt)
	}
	if !doc.has("created") {
		fields["created"] = sampleEpoch.Unix()
	}

	for k, v := range fields {
		if err := doc.set(k, v); err != nil {
			return err
		}
	}
	return nil
}
