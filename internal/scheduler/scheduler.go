// Package scheduler runs a task on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Scheduler fires one named task on a standard five-field cron spec (or a
// descriptor such as "@every 1h"). A tick that arrives while the previous
// run is still going is skipped.
type Scheduler struct {
	cron *cron.Cron
	spec string
	name string
	task Task
	log  *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New validates spec and registers task. Nothing runs until Start.
func New(spec, name string, task Task, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scheduler").With(zap.String("task", name))

	cl := cronLogger{log.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec: spec,
		name: name,
		task: task,
		log:  log,
		ctx:  context.Background(),
	}
	if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing. Runs get a context derived from ctx that is
// cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("cron started", zap.String("spec", s.spec))
}

// RunNow runs the task once in the caller's goroutine.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.run(ctx)
}

// Stop stops scheduling and waits for a run in progress to finish, or for
// ctx to end, in which case the run's context is cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		cancel = func() {}
	}

	select {
	case <-done.Done():
		cancel()
		s.log.Info("cron stopped")
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	_ = s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) error {
	err := s.task(ctx)
	if err != nil {
		s.log.Error("task failed", zap.Error(err))
	}
	return err
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
