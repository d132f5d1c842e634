package sandbox

import (
	"encoding/json"
	"fmt"
	"strings"
)

// replyRule pairs keyword triggers with a canned reply. Rules are checked
// in slice order and the first hit wins.
type replyRule struct {
	name     string
	keywords []string
	reply    string
}

var replyRules = []replyRule{
	{
		name:     "appreciation",
		keywords: []string{"thank", "grateful", "appreciate"},
		reply: "Thank you so much for your kind words! We're thrilled to hear you're enjoying the app, " +
			"and feedback like yours keeps our team motivated. We have more improvements on the way.",
	},
	{
		name:     "bug",
		keywords: []string{"bug", "crash"},
		reply: "We're sorry for the trouble you've run into. Could you share your device model, OS version " +
			"and the steps that lead to the problem at support@example.com? We'll look into it right away.",
	},
	{
		name:     "feature",
		keywords: []string{"feature", "suggest"},
		reply: "Thanks for the suggestion! We've shared it with our product team and added it to our roadmap " +
			"discussions. Keep an eye on upcoming release notes.",
	},
}

const genericReply = "Thank you for taking the time to leave a review. We read every piece of feedback " +
	"and use it to make the app better. Please reach out if there is anything we can help with."

// GenerateReply picks a canned reply for prompt. It is a deterministic
// stand-in for a model call.
func GenerateReply(prompt string) string {
	return replyRuleFor(prompt).reply
}

func replyRuleFor(prompt string) replyRule {
	lower := strings.ToLower(prompt)
	for _, rule := range replyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule
			}
		}
	}
	return replyRule{name: "generic", reply: genericReply}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage accepts both plain string content and the list-of-parts form.
type ChatMessage struct {
	Role    string      `json:"role"`
	Content MessageText `json:"content"`
}

type MessageText string

func (t *MessageText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = MessageText(s)
		return nil
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("unsupported message content: %w", err)
	}

	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	*t = MessageText(strings.Join(texts, "\n"))
	return nil
}

func parseChatRequest(body []byte) (chatRequest, error) {
	var req chatRequest
	if len(strings.TrimSpace(string(body))) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("malformed chat completion request: %w", err)
	}
	return req, nil
}

// lastUserPrompt scans messages from the end and returns the first
// user-role content.
func lastUserPrompt(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return string(messages[i].Content)
		}
	}
	return ""
}

func countTokens(s string) int {
	return len(strings.Fields(s))
}
