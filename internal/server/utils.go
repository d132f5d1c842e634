package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
)

const (
	userHeader = "X-User-ID"
	guestUser  = "guest"

	maxBodyBytes = 1 << 20
)

func queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 4*time.Second)
}

func (s *Server) jsonEncode(w http.ResponseWriter, sCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(sCode)

	if err, ok := data.(error); ok {
		data = map[string]any{"error": err.Error()}
	} else if str, ok := data.(string); ok {
		data = map[string]any{"message": str}
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("error while serializing response", "err", err)
	}
}

// storeError renders a store failure, hiding unexpected details.
func (s *Server) storeError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.jsonEncode(w, http.StatusNotFound, fmt.Errorf("%s not found", what))
	case errors.Is(err, store.ErrDuplicate):
		s.jsonEncode(w, http.StatusConflict, fmt.Errorf("%s already exists", what))
	default:
		s.log.Error("store operation failed", "resource", what, "err", err)
		s.jsonEncode(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid data.")
	}
	return nil
}

func idParam(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func owner(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(userHeader)); u != "" {
		return u
	}
	return guestUser
}
