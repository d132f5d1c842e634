package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

// LogWriter persists request log entries.
type LogWriter interface {
	CreateLog(ctx context.Context, entry *m.LogEntry) error
}

// Record describes one emulated exchange.
type Record struct {
	EnvironmentID uint
	EndpointID    *uint
	ScenarioID    *uint
	Method        string
	Path          string
	Headers       map[string]string
	Body          any
	Status        int
	Response      any
	Duration      time.Duration
}

// RequestLogger writes records in the background. Write failures are
// absorbed and never reach the caller.
type RequestLogger struct {
	writers []LogWriter
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewRequestLogger(log *slog.Logger, writers ...LogWriter) *RequestLogger {
	if log == nil {
		log = slog.Default()
	}
	return &RequestLogger{writers: writers, log: log, timeout: 5 * time.Second}
}

// Log queues rec for writing and returns immediately.
func (l *RequestLogger) Log(rec Record) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		l.Write(ctx, rec)
	}()
}

// Wait blocks until every queued record has been handled.
func (l *RequestLogger) Wait() {
	l.wg.Wait()
}

// Write stores rec synchronously in every writer.
func (l *RequestLogger) Write(ctx context.Context, rec Record) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("request log write panicked", "panic", r, "path", rec.Path)
		}
	}()

	entry := l.entry(rec)
	for _, w := range l.writers {
		err := w.CreateLog(ctx, entry)
		if err == nil {
			continue
		}

		if isBenignStoreError(err) {
			l.log.Debug("request log skipped", "reason", err.Error(), "environment", rec.EnvironmentID)
			continue
		}
		l.log.Error("failed to write request log", "err", err, "environment", rec.EnvironmentID, "path", rec.Path)
	}
}

func (l *RequestLogger) entry(rec Record) *m.LogEntry {
	entry := &m.LogEntry{
		RequestID:      uuid.NewString(),
		EnvironmentID:  rec.EnvironmentID,
		EndpointID:     rec.EndpointID,
		ScenarioID:     rec.ScenarioID,
		Method:         rec.Method,
		Path:           rec.Path,
		ResponseStatus: rec.Status,
		DurationMs:     rec.Duration.Milliseconds(),
	}

	if rec.Headers != nil {
		entry.RequestHeaders = l.serialize("requestHeaders", rec.Headers)
	}
	if rec.Body != nil {
		entry.RequestBody = l.serialize("requestBody", rec.Body)
	}
	if rec.Response != nil {
		entry.ResponseBody = l.serialize("responseBody", rec.Response)
	}
	return entry
}

// serialize encodes one field, substituting an error marker when the
// value cannot be encoded.
func (l *RequestLogger) serialize(field string, v any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Warn("request log field panicked during encoding", "field", field, "panic", r)
			out = serializationMarker(field)
		}
	}()

	raw, err := json.Marshal(v)
	if err != nil {
		l.log.Warn("request log field could not be encoded", "field", field, "err", err)
		return serializationMarker(field)
	}
	return string(raw)
}

func serializationMarker(field string) string {
	return fmt.Sprintf(`{"error":"failed to serialize %s"}`, field)
}

// isBenignStoreError reports errors caused by a log schema that is missing
// or constrained, as opposed to a failing store.
func isBenignStoreError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "23502", "23503", "23505":
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "constraint failed")
}
