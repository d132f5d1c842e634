package notifs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Provider delivers a single titled message with one key/value field.
type Provider interface {
	SendMessage(title string, desc string, msgKey string, msgValue string)
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Footer struct {
	Text    string `json:"text"`
	IconUrl string `json:"icon_url,omitempty"`
}

type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Url         string  `json:"url,omitempty"`
	Color       int     `json:"color"`
	Fields      []Field `json:"fields"`
	Footer      Footer  `json:"footer,omitempty"`
}

type message struct {
	Embeds  []Embed `json:"embeds"`
	Content string  `json:"content,omitempty"`
}

// Discord field values are capped at 1024 characters including the code fence.
const fieldLimit = 1000

type Discord struct {
	webhook string
	color   int
	client  *http.Client
	log     *slog.Logger
}

const (
	colorInfo  = 3447003
	colorError = 15158332
)

func NewDiscord(webhook string, color int, log *slog.Logger) *Discord {
	if log == nil {
		log = slog.Default()
	}
	return &Discord{
		webhook: webhook,
		color:   color,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

func (d *Discord) SendMessage(title string, desc string, msgKey string, msgValue string) {
	if len(msgValue) > fieldLimit {
		first, second := splitValue(msgValue)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.SendMessage(title, desc, msgKey, first)
		}()
		go func() {
			defer wg.Done()
			d.SendMessage(title, desc, msgKey, second)
		}()
		wg.Wait()
		return
	}

	embed := Embed{
		Title:       fmt.Sprintf(":telescope: %s", title),
		Description: fmt.Sprintf(":cyclone: **%s**", desc),
		Color:       d.color,
		Footer:      Footer{Text: "Review Sandbox"},
		Fields: []Field{{
			Name:  fmt.Sprintf(":dart: **%s**", msgKey),
			Value: fmt.Sprintf("```\n%s\n```", msgValue),
		}},
	}
	d.sendEmbedReq(message{Embeds: []Embed{embed}})
}

// splitValue cuts v in two near the middle, on a line break when one exists.
func splitValue(v string) (string, string) {
	half := len(v) / 2
	if i := strings.LastIndexByte(v[:half], '\n'); i > 0 {
		half = i
	} else if i := strings.IndexByte(v[half:], '\n'); i >= 0 && half+i < len(v)-1 {
		half += i
	}
	return v[:half], strings.TrimPrefix(v[half:], "\n")
}

func (d *Discord) sendEmbedReq(msg message) {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		d.log.Error("failed to marshal discord message", "err", err)
		return
	}

	resp, err := d.client.Post(d.webhook, "application/json", bytes.NewBuffer(messageBytes))
	if err != nil {
		d.log.Error("failed to send discord message", "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		d.log.Warn("unexpected status from discord", "status", resp.Status, "body", string(body))
	}
}
