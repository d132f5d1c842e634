package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type job struct {
	duration  time.Duration
	cronJob   gocron.Job
	task      Task
	active    bool
	cDuration time.Duration
	killer    context.CancelFunc
	isRunning bool
	mu        sync.Mutex
}

func (j *job) runTask() {
	j.mu.Lock()
	if !j.active {
		j.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), j.cDuration)
	j.killer = cancel
	j.isRunning = true
	j.mu.Unlock()

	defer func() {
		cancel()
		j.mu.Lock()
		j.isRunning = false
		j.killer = nil
		j.mu.Unlock()
	}()

	j.task.Start(ctx)
}

// Status describes a registered job.
type Status struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Interval string `json:"interval"`
	Active   bool   `json:"active"`
	Running  bool   `json:"running"`
}

type Scheduler struct {
	core gocron.Scheduler
	jobs []*job
	wg   *sync.WaitGroup
	log  *slog.Logger
}

func (s *Scheduler) lookup(id int) (*job, error) {
	if id < 0 || id >= len(s.jobs) {
		return nil, fmt.Errorf("invalid id: %d", id)
	}
	return s.jobs[id], nil
}

func (s *Scheduler) DeactiveJob(id int) error {
	job, err := s.lookup(id)
	if err != nil {
		return err
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	if !job.active {
		return fmt.Errorf("job id %d is already inactive", id)
	}

	if err := s.core.RemoveJob(job.cronJob.ID()); err != nil {
		return fmt.Errorf("remove job %d: %w", id, err)
	}
	job.active = false
	if job.killer != nil {
		job.killer()
	}

	s.log.Info("job deactivated", "id", id, "job", job.task.Name())
	return nil
}

func (s *Scheduler) ActiveJob(id int) error {
	job, err := s.lookup(id)
	if err != nil {
		return err
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	if job.active {
		return fmt.Errorf("job id %d is already active", id)
	}

	j, err := s.core.NewJob(
		gocron.DurationJob(job.duration),
		gocron.NewTask(job.runTask),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule job %d: %w", id, err)
	}

	job.cronJob = j
	job.active = true

	s.log.Info("job activated", "id", id, "job", job.task.Name(), "interval", job.duration)
	return nil
}

func (s *Scheduler) Jobs() []Status {
	out := make([]Status, 0, len(s.jobs))
	for id, job := range s.jobs {
		job.mu.Lock()
		out = append(out, Status{
			ID:       id,
			Name:     job.task.Name(),
			Interval: job.duration.String(),
			Active:   job.active,
			Running:  job.isRunning,
		})
		job.mu.Unlock()
	}
	return out
}

// DeactiveAll stops every active job and reports how many were stopped.
func (s *Scheduler) DeactiveAll() (int, error) {
	stopped := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		active := job.active
		job.mu.Unlock()
		if !active {
			continue
		}

		if err := s.DeactiveJob(id); err != nil {
			return stopped, err
		}
		stopped++
	}
	return stopped, nil
}

func (s *Scheduler) Shutdown() error {
	if _, err := s.DeactiveAll(); err != nil {
		return fmt.Errorf("error while shutting scheduler down: %w", err)
	}
	return s.core.Shutdown()
}

// Intervals configures how often each job runs.
type Intervals struct {
	Prune   time.Duration
	Refresh time.Duration
}

// ScheduleJobs starts the scheduler and activates every job.
func ScheduleJobs(deps *Dependencies, every Intervals) (*Scheduler, error) {
	core, err := gocron.NewScheduler(gocron.WithLimitConcurrentJobs(1, gocron.LimitModeWait))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	jobs := []*job{
		pruneLogsJob(deps, every.Prune),
		refreshDemoJob(deps, every.Refresh),
	}

	scheduler := &Scheduler{core: core, jobs: jobs, wg: deps.wg, log: deps.logger()}

	core.Start()
	for id := range scheduler.jobs {
		if err := scheduler.ActiveJob(id); err != nil {
			core.Shutdown()
			return nil, err
		}
	}

	return scheduler, nil
}

func pruneLogsJob(d *Dependencies, every time.Duration) *job {
	return &job{
		duration:  every,
		task:      &PruneLogs{Dependencies: d},
		cDuration: 10 * time.Minute,
	}
}

func refreshDemoJob(d *Dependencies, every time.Duration) *job {
	return &job{
		duration:  every,
		task:      &RefreshDemo{Dependencies: d},
		cDuration: 2 * time.Minute,
	}
}
