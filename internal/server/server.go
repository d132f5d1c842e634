// Package server exposes the emulated provider APIs and the management
// API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/config"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/jobs"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/logmirror"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/notifs"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/sandbox"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/upstream"
)

// Scheduler is the job control surface exposed under /job.
type Scheduler interface {
	ActiveJob(id int) error
	DeactiveJob(id int) error
	DeactiveAll() (int, error)
	Jobs() []jobs.Status
}

type Server struct {
	store     *store.Store
	provision *sandbox.Provisioner
	sandbox   *sandbox.Orchestrator
	scheduler Scheduler
	upstream  *upstream.OpenAI
	log       *slog.Logger
}

type Options struct {
	Store     *store.Store
	Logger    *sandbox.RequestLogger
	Scheduler Scheduler
	Upstream  *upstream.OpenAI
	Log       *slog.Logger
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	up := opts.Upstream
	if up == nil {
		up = upstream.NewOpenAI("https://api.openai.com", nil)
	}
	return &Server{
		store:     opts.Store,
		provision: sandbox.NewProvisioner(opts.Store),
		sandbox:   sandbox.NewOrchestrator(opts.Store, opts.Logger, log),
		scheduler: opts.Scheduler,
		upstream:  up,
		log:       log,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.HandleFunc("/api/app-store/*", s.emulate(appStore))
	r.HandleFunc("/api/google-play/*", s.emulate(googlePlay))
	r.HandleFunc("/api/openai/*", s.emulate(openAI))

	r.Route("/environments", func(r chi.Router) {
		r.Get("/", s.listEnvironments)
		r.Post("/", s.createEnvironment)
		r.Get("/{id}", s.getEnvironment)
		r.Put("/{id}", s.editEnvironment)
		r.Delete("/{id}", s.deleteEnvironment)

		r.Get("/{id}/endpoints", s.listEndpoints)
		r.Post("/{id}/endpoints", s.createEndpoint)

		r.Get("/{id}/logs", s.listLogs)
		r.Delete("/{id}/logs", s.clearLogs)
	})

	r.Route("/endpoints/{id}", func(r chi.Router) {
		r.Get("/", s.getEndpoint)
		r.Put("/", s.editEndpoint)
		r.Delete("/", s.deleteEndpoint)

		r.Get("/scenarios", s.listScenarios)
		r.Post("/scenarios", s.createScenario)
	})

	r.Route("/scenarios/{id}", func(r chi.Router) {
		r.Get("/", s.getScenario)
		r.Put("/", s.editScenario)
		r.Delete("/", s.deleteScenario)
		r.Post("/default", s.setDefaultScenario)
	})

	r.Get("/job/", s.listJobs)
	r.Post("/job/{id:[0-9]{1,3}}", s.activeJob)
	r.Delete("/job/{id:[0-9]{1,3}}", s.deactiveJob)
	r.Delete("/job/", s.deactiveAll)

	r.Post("/upstream/openai/test", s.testOpenAI)

	return r
}

// Run wires every component from cfg and serves until a termination
// signal arrives. A second signal exits immediately.
func Run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	db, err := store.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	provision := sandbox.NewProvisioner(db)
	if err := provision.EnsureDemo(ctx); err != nil {
		return fmt.Errorf("prepare demo environment: %w", err)
	}

	writers := []sandbox.LogWriter{db}
	if cfg.MongoURI != "" {
		mirror, err := logmirror.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		defer mirror.Close(context.Background())
		writers = append(writers, mirror)
		log.Info("mirroring request logs to mongo", "database", cfg.MongoDatabase)
	}
	requests := sandbox.NewRequestLogger(log, writers...)

	var wg sync.WaitGroup
	notify := notifs.NewNotif(cfg.DiscordWebhook, log)
	scheduler, err := jobs.ScheduleJobs(
		jobs.NewDependencies(db, notify, &wg, log, cfg.LogRetention),
		jobs.Intervals{Prune: cfg.PruneInterval, Refresh: cfg.DemoRefreshInterval},
	)
	if err != nil {
		return err
	}

	s := New(Options{
		Store:     db,
		Logger:    requests,
		Scheduler: scheduler,
		Upstream:  upstream.NewOpenAI(cfg.OpenAIBaseURL, nil),
		Log:       log,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	var interruptCount int
	stopped := make(chan struct{})

	go func() {
		for {
			<-sig
			interruptCount++
			if interruptCount == 1 {
				go func() {
					defer close(stopped)
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
					defer cancel()
					if err := httpServer.Shutdown(shutdownCtx); err != nil {
						log.Error("http server shutdown failed", "err", err)
					}
					if err := scheduler.Shutdown(); err != nil {
						log.Error("scheduler shutdown failed", "err", err)
					}
				}()
			} else {
				log.Error("received second signal, terminating immediately")
				os.Exit(1)
			}
		}
	}()

	log.Info("listening", "addr", httpServer.Addr, "driver", cfg.DBDriver)

	err = httpServer.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		scheduler.Shutdown()
		return err
	}

	log.Info("http server closed, preparing graceful shutdown")
	<-stopped
	wg.Wait()
	requests.Wait()

	log.Info("sandbox is going to sleep, cya!")
	return nil
}
