package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"sportsync/ingestion/internal/metrics"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle state of one job.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Run outcomes reported in RunStatus.Status and metrics.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPanic   = "panic"
)

// ErrUnknownJob is returned by RunNow for a name that is not registered.
var ErrUnknownJob = errors.New("unknown job")

// Job is one recurring unit of ingestion work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// RunStatus describes one finished run.
type RunStatus struct {
	Job        string        `json:"job"`
	RunID      string        `json:"run_id"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`
}

// JobSnapshot is the observable state of one job.
type JobSnapshot struct {
	Name     string     `json:"name"`
	Interval string     `json:"interval"`
	State    State      `json:"state"`
	InFlight int        `json:"in_flight"`
	Runs     int64      `json:"runs"`
	Failures int64      `json:"failures"`
	Last     *RunStatus `json:"last,omitempty"`
}

type jobState struct {
	job Job

	mu       sync.Mutex
	inFlight int
	runs     int64
	failures int64
	last     *RunStatus
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithOnComplete registers fn to be called after every run, successful or not.
func WithOnComplete(fn func(ctx context.Context, status RunStatus)) Option {
	return func(s *Scheduler) { s.onComplete = fn }
}

// Scheduler fires each job immediately and then on its fixed interval. A run
// that outlives its interval does not delay or suppress the next one.
type Scheduler struct {
	cron       *cron.Cron
	jobs       []*jobState
	byName     map[string]*jobState
	onComplete func(ctx context.Context, status RunStatus)

	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// New creates a scheduler for jobs.
func New(jobs []Job, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:   cron.New(),
		byName: make(map[string]*jobState, len(jobs)),
	}
	for _, j := range jobs {
		js := &jobState{job: j}
		s.jobs = append(s.jobs, js)
		s.byName[j.Name] = js
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules every job and triggers its first run right away.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	for _, js := range s.jobs {
		if js.job.Interval <= 0 {
			return fmt.Errorf("job %s: interval must be positive, got %s", js.job.Name, js.job.Interval)
		}
	}

	log.Info().Int("jobs", len(s.jobs)).Msg("Scheduler starting...")

	for _, js := range s.jobs {
		js := js
		s.cron.Schedule(cron.Every(js.job.Interval), cron.FuncJob(func() {
			s.run(ctx, js)
		}))

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run(ctx, js)
		}()

		log.Info().
			Str("job", js.job.Name).
			Dur("interval", js.job.Interval).
			Msg("Job scheduled")
	}

	s.cron.Start()
	s.started = true
	return nil
}

// Stop stops the timers and waits for in-flight runs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	log.Info().Msg("Stopping scheduler...")

	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Scheduler stopped")
		return nil
	case <-ctx.Done():
		log.Warn().Msg("Scheduler stop timed out with runs still in flight")
		return ctx.Err()
	}
}

// RunNow runs the named job once on the calling goroutine with the same
// bookkeeping as a scheduled run.
func (s *Scheduler) RunNow(ctx context.Context, name string) (RunStatus, error) {
	js, ok := s.byName[name]
	if !ok {
		return RunStatus{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	status := s.run(ctx, js)
	if status.Status != StatusSuccess {
		return status, fmt.Errorf("job %s %s: %s", name, status.Status, status.Error)
	}
	return status, nil
}

// Names lists the registered jobs in registration order.
func (s *Scheduler) Names() []string {
	out := make([]string, len(s.jobs))
	for i, js := range s.jobs {
		out[i] = js.job.Name
	}
	return out
}

// Snapshot reports the current state of every job.
func (s *Scheduler) Snapshot() []JobSnapshot {
	out := make([]JobSnapshot, 0, len(s.jobs))
	for _, js := range s.jobs {
		js.mu.Lock()
		snap := JobSnapshot{
			Name:     js.job.Name,
			Interval: js.job.Interval.String(),
			State:    StateIdle,
			InFlight: js.inFlight,
			Runs:     js.runs,
			Failures: js.failures,
		}
		if js.inFlight > 0 {
			snap.State = StateRunning
		}
		if js.last != nil {
			last := *js.last
			snap.Last = &last
		}
		js.mu.Unlock()
		out = append(out, snap)
	}
	return out
}

func (s *Scheduler) run(ctx context.Context, js *jobState) RunStatus {
	name := js.job.Name
	status := RunStatus{
		Job:       name,
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	logger := log.Ctx(ctx).With().
		Str("job", name).
		Str("run_id", status.RunID).
		Logger()
	ctx = logger.WithContext(ctx)

	js.mu.Lock()
	js.inFlight++
	js.mu.Unlock()
	metrics.JobsRunning.WithLabelValues(name).Inc()

	logger.Info().Msg("Job started")

	err := safeRun(ctx, js.job.Run)

	status.FinishedAt = time.Now().UTC()
	status.Duration = status.FinishedAt.Sub(status.StartedAt)

	var perr *panicError
	switch {
	case err == nil:
		status.Status = StatusSuccess
		logger.Info().Dur("duration", status.Duration).Msg("Job completed")
	case errors.As(err, &perr):
		status.Status = StatusPanic
		status.Error = err.Error()
		metrics.RecordError("scheduler", "panic")
		logger.Error().
			Interface("panic", perr.value).
			Str("stack", perr.stack).
			Msg("Job panicked")
	default:
		status.Status = StatusFailed
		status.Error = err.Error()
		metrics.RecordError("scheduler", "job_failed")
		logger.Error().Err(err).Dur("duration", status.Duration).Msg("Job failed")
	}

	metrics.JobsRunning.WithLabelValues(name).Dec()
	metrics.RecordJobRun(name, status.Status, status.Duration.Seconds(), float64(status.FinishedAt.Unix()))

	js.mu.Lock()
	js.inFlight--
	js.runs++
	if status.Status != StatusSuccess {
		js.failures++
	}
	last := status
	js.last = &last
	js.mu.Unlock()

	if s.onComplete != nil {
		s.onComplete(ctx, status)
	}
	return status
}

type panicError struct {
	value any
	stack string
}

func (p *panicError) Error() string { return fmt.Sprintf("panic: %v", p.value) }

func safeRun(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: string(debug.Stack())}
		}
	}()
	return fn(ctx)
}
