package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/sandbox"
)

const envHeader = "X-Sandbox-Environment"

const (
	appStore   = m.AppStoreConnect
	googlePlay = m.GooglePlay
	openAI     = m.OpenAI
)

// Header values never written to the request log.
var redactedHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
	"X-Api-Key":     true,
}

// environmentID reads the target environment. Missing or unparsable
// values fall back to the demo environment.
func environmentID(r *http.Request) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(r.Header.Get(envHeader)), 10, 64)
	if err != nil || id == 0 {
		return m.DemoEnvironmentID
	}
	return uint(id)
}

func logHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		if redactedHeaders[k] {
			out[k] = "[redacted]"
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func (s *Server) emulate(apiType m.APIType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			s.jsonEncode(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error":   http.StatusText(http.StatusRequestEntityTooLarge),
				"message": "Request body too large",
			})
			return
		}

		resp := s.sandbox.Respond(r.Context(), sandbox.Request{
			EnvironmentID: environmentID(r),
			APIType:       apiType,
			Path:          "/" + chi.URLParam(r, "*"),
			Method:        r.Method,
			Scenario:      m.ScenarioType(r.URL.Query().Get("scenario")),
			Body:          body,
			Headers:       logHeaders(r.Header),
		})

		if resp.Delay > 0 {
			timer := time.NewTimer(resp.Delay)
			select {
			case <-timer.C:
			case <-r.Context().Done():
				timer.Stop()
				return
			}
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		w.Write(resp.Data)
	}
}
