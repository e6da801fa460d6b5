// Package reminder periodically sweeps the store for overdue tasks.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/taskboard/internal/logfields"
	"git.home.luguber.info/inful/taskboard/internal/metrics"
	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
	"git.home.luguber.info/inful/taskboard/internal/view"
)

const jobName = "overdue-sweep"

// Notify receives each task the first time it is seen overdue.
type Notify func(t task.Task)

// Scheduler runs the overdue sweep on an interval.
type Scheduler struct {
	scheduler gocron.Scheduler
	store     state.Reader
	notify    Notify
	recorder  metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time

	stopOnce sync.Once
	stopErr  error

	mu       sync.Mutex
	notified map[string]time.Time // task id -> deadline it was reported for
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithRecorder(rec metrics.Recorder) Option { return func(s *Scheduler) { s.recorder = rec } }
func WithLogger(l *slog.Logger) Option         { return func(s *Scheduler) { s.logger = l } }
func WithClock(now func() time.Time) Option    { return func(s *Scheduler) { s.now = now } }

// New creates a scheduler for store. notify may be nil, in which case
// overdue tasks are only logged.
func New(store state.Reader, notify Notify, opts ...Option) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	s := &Scheduler{
		scheduler: gs,
		store:     store,
		notify:    notify,
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
		now:       time.Now,
		notified:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Schedule registers the sweep job. It must be called before Start.
func (s *Scheduler) Schedule(interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("invalid reminder interval %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.run),
		gocron.WithName(jobName),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create overdue sweep job: %w", err)
	}
	return job.ID().String(), nil
}

// Start begins the scheduler and stops it when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting reminder scheduler", logfields.Job(jobName))
	s.scheduler.Start()
	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			s.logger.Warn("Reminder scheduler shutdown failed", logfields.Error(err))
		}
	}()
}

// Stop shuts the scheduler down. Calling it more than once is safe.
func (s *Scheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping reminder scheduler", logfields.Job(jobName))
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

func (s *Scheduler) run() {
	fresh := s.Sweep()
	if len(fresh) > 0 {
		s.logger.Info("Overdue tasks found", logfields.Job(jobName), logfields.Count(len(fresh)))
	}
}

// Sweep reports tasks that became overdue since the previous sweep. A task
// is reported again only after its deadline changes.
func (s *Scheduler) Sweep() []task.Task {
	now := s.now()
	tasks := s.store.Tasks()
	overdue := view.Overdue(tasks, now)

	s.mu.Lock()
	current := make(map[string]time.Time, len(overdue))
	var fresh []task.Task
	for _, t := range overdue {
		current[t.ID] = t.Deadline
		if prev, ok := s.notified[t.ID]; ok && prev.Equal(t.Deadline) {
			continue
		}
		fresh = append(fresh, t)
	}
	s.notified = current
	s.mu.Unlock()

	sum := view.Counts(tasks, now)
	s.recorder.SetTaskCounts(sum.Pending, sum.Completed, sum.Overdue)
	if len(fresh) > 0 {
		s.recorder.IncOverdueNotified(len(fresh))
	}
	for _, t := range fresh {
		s.logger.Warn("Task overdue",
			logfields.TaskID(t.ID),
			logfields.Title(t.Title),
			slog.Time("deadline", t.Deadline))
		if s.notify != nil {
			s.notify(t)
		}
	}
	return fresh
}
