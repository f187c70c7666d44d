package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// runTimeout bounds a single job run
const runTimeout = 5 * time.Minute

// Func is the body of a scheduled job
type Func func(ctx context.Context) error

// Scheduler runs named jobs on cron specs. A run still in progress makes the next
// tick of the same job a no-op.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	logger  logger.Logger
	metrics *metrics.Metrics

	mu   sync.Mutex
	jobs map[string]Func
}

// NewScheduler creates a stopped scheduler
func NewScheduler(logger logger.Logger, m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
		metrics: m,
		jobs:    make(map[string]Func),
	}
}

// Add registers fn under name on spec (standard 5-field cron or @every/@hourly descriptors)
func (s *Scheduler) Add(name, spec string, fn Func) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, fn) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.jobs[name] = fn
	s.logger.Info("Scheduled job", "job", name, "spec", spec)
	return nil
}

// RunNow runs a registered job synchronously, outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	fn, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s is not registered", name)
	}
	return s.run(name, fn)
}

func (s *Scheduler) run(name string, fn Func) error {
	ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordJobRun(name, err)
	if err != nil {
		s.logger.Error("Job failed", "job", name, "duration", time.Since(start), "error", err)
		return err
	}
	s.logger.Debug("Job finished", "job", name, "duration", time.Since(start))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them until ctx ends
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's own logging through the service logger
type cronLogger struct {
	logger logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
