package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/notifs"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/sandbox"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
)

type Task interface {
	Start(context.Context)
	Name() string
}

// outcome is what a finished task reports.
type outcome struct {
	summary string
	details []string
	// quiet outcomes are logged but not sent to the webhook.
	quiet bool
}

type regularTask interface {
	Name() string
	run(context.Context) (outcome, error)
}

func startRegularTask(ctx context.Context, t regularTask, d *Dependencies) {
	if d.wg != nil {
		d.wg.Add(1)
		defer d.wg.Done()
	}

	log := d.logger().With("job", t.Name())
	log.Info("job started")
	start := time.Now()

	out, err := t.run(ctx)
	if err != nil {
		d.notify.ErrNotif(t.Name(), err)
		return
	}

	log.Info("job finished successfully", "took", time.Since(start), "summary", out.summary)
	if !out.quiet {
		d.notify.JobNotif(t.Name(), out.summary, out.details)
	}
}

type Dependencies struct {
	store     *store.Store
	provision *sandbox.Provisioner
	notify    notifs.Notify
	wg        *sync.WaitGroup
	log       *slog.Logger
	retention time.Duration
	now       func() time.Time
}

func NewDependencies(s *store.Store, notify notifs.Notify, wg *sync.WaitGroup, log *slog.Logger, retention time.Duration) *Dependencies {
	return &Dependencies{
		store:     s,
		provision: sandbox.NewProvisioner(s),
		notify:    notify,
		wg:        wg,
		log:       log,
		retention: retention,
		now:       time.Now,
	}
}

func (d *Dependencies) logger() *slog.Logger {
	if d.log == nil {
		return slog.Default()
	}
	return d.log
}

// PruneLogs deletes request log entries older than the retention window.
type PruneLogs struct {
	*Dependencies
}

func (t *PruneLogs) Name() string { return "Prune request logs" }

func (t *PruneLogs) Start(ctx context.Context) {
	startRegularTask(ctx, t, t.Dependencies)
}

func (t *PruneLogs) run(ctx context.Context) (outcome, error) {
	cutoff := t.now().Add(-t.retention)
	n, err := t.store.PruneLogs(ctx, cutoff)
	if err != nil {
		return outcome{}, fmt.Errorf("prune logs older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return outcome{
		summary: fmt.Sprintf("%d log entries older than %s removed", n, cutoff.Format(time.DateOnly)),
		quiet:   n == 0,
	}, nil
}

// RefreshDemo keeps the demo environment active and fully provisioned.
type RefreshDemo struct {
	*Dependencies
}

func (t *RefreshDemo) Name() string { return "Refresh demo environment" }

func (t *RefreshDemo) Start(ctx context.Context) {
	startRegularTask(ctx, t, t.Dependencies)
}

func (t *RefreshDemo) run(ctx context.Context) (outcome, error) {
	if err := t.provision.EnsureDemo(ctx); err != nil {
		return outcome{}, fmt.Errorf("ensure demo environment: %w", err)
	}

	eps, err := t.store.ListEndpoints(ctx, m.DemoEnvironmentID)
	if err != nil {
		return outcome{}, fmt.Errorf("list demo endpoints: %w", err)
	}

	details := make([]string, 0, len(eps))
	for _, ep := range eps {
		details = append(details, fmt.Sprintf("%s %s (%s)", ep.Method, ep.Path, ep.APIType))
	}
	return outcome{
		summary: fmt.Sprintf("demo environment ready with %d endpoints", len(eps)),
		details: details,
		quiet:   true,
	}, nil
}
