package poll

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Status describes the most recent scheduled run.
type Status struct {
	Running   bool
	LastRunAt string
	LastOkAt  string
	LastAdded int
	LastError string
}

// Tracker runs exports and remembers how the last one went.
type Tracker struct {
	status atomic.Value // Status
	Log    *zap.Logger
	Now    func() time.Time
}

// Status returns a snapshot of the last run.
func (t *Tracker) Status() Status {
	st, _ := t.status.Load().(Status)
	return st
}

// Run calls run and records its outcome. The error is returned as well as
// stored so callers can decide whether it is fatal.
func (t *Tracker) Run(ctx context.Context, run func(context.Context) (Summary, error)) (Summary, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	log := t.Log
	if log == nil {
		log = zap.NewNop()
	}

	st := t.Status()
	st.Running = true
	st.LastRunAt = now().Format(time.RFC3339)
	t.status.Store(st)

	sum, err := run(ctx)

	st = t.Status()
	st.Running = false
	if err != nil {
		st.LastError = err.Error()
		log.Error("export failed", zap.Error(err))
	} else {
		st.LastError = ""
		st.LastOkAt = now().Format(time.RFC3339)
		st.LastAdded = sum.Added
		log.Info("export ok", zap.Int("records", sum.Records), zap.Int("added", sum.Added))
	}
	t.status.Store(st)

	return sum, err
}
