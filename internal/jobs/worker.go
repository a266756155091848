package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sjperalta/arrendando-api/pkg/logger"
)

var (
	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arrendando_jobs_total",
		Help: "Background job runs by job name and result",
	}, []string{"job", "result"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arrendando_job_duration_seconds",
		Help:    "Background job duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int

	mu      sync.RWMutex
	closed  bool
	stats   WorkerStats
	history map[string]*JobRun
}

// WorkerStats holds statistics about the worker. CompletedJobs counts every
// finished job; FailedJobs is the failed subset.
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// JobRun is the last outcome of a named scheduled job
type JobRun struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"-"`
	Every     string        `json:"every"`
	Runs      int64         `json:"runs"`
	Failures  int64         `json:"failures"`
	LastRun   *time.Time    `json:"last_run"`
	LastError string        `json:"last_error,omitempty"`
	Duration  string        `json:"last_duration,omitempty"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := max(numWorkers*2, 10)

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		history:       make(map[string]*JobRun),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool. When the queue is
// full the job runs on the caller's goroutine.
func (w *Worker) Enqueue(job Job) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		logger.Warn("[Worker] Shutting down, job dropped")
		return
	}
	select {
	case w.queue <- job:
		w.mu.RUnlock()
		return
	default:
	}
	w.mu.RUnlock()

	logger.Warn("[Worker] Queue full, running job synchronously")
	if err := job(w.ctx); err != nil {
		logger.Error("[Worker] Job error", "error", err)
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(job Job) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		logger.Warn("[Worker] Shutting down, async job dropped")
		return
	}
	w.wg.Add(1)
	w.mu.RUnlock()

	go func() {
		defer w.wg.Done()

		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.trackJobStart()
		failed := false
		defer func() {
			if r := recover(); r != nil {
				logger.Error(fmt.Sprintf("[Worker] Async job panic: %v", r))
				failed = true
			}
			w.trackJobEnd(failed)
		}()

		if err := job(w.ctx); err != nil {
			logger.Error("[Worker] Async job error", "error", err)
			failed = true
		}
	}()
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.trackJobStart()
			start := time.Now()
			err := job(w.ctx)
			if err != nil {
				logger.Error(fmt.Sprintf("[Worker %d] Job error", workerID), "error", err)
			} else {
				logger.Debug(fmt.Sprintf("[Worker %d] Job completed", workerID), "elapsed", time.Since(start))
			}
			w.trackJobEnd(err != nil)
		}
	}
}

// ScheduleEvery runs a named job at fixed intervals. The first run happens
// after the interval.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, false, job)
}

// ScheduleEveryImmediate runs a named job once at startup, then at fixed
// intervals, so restarts do not postpone it by a whole interval.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, true, job)
}

func (w *Worker) schedule(name string, interval time.Duration, immediate bool, job Job) {
	w.mu.Lock()
	w.history[name] = &JobRun{Name: name, Interval: interval, Every: interval.String()}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.RunNamed(name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.RunNamed(name, job)
			}
		}
	}()
}

// RunNamed runs job synchronously, recording its outcome under name
func (w *Worker) RunNamed(name string, job Job) (err error) {
	w.trackJobStart()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		elapsed := time.Since(start)
		if err != nil {
			logger.Error("[Scheduler] Job failed", "job", name, "error", err, "elapsed", elapsed)
			jobRuns.WithLabelValues(name, "error").Inc()
		} else {
			logger.Info("[Scheduler] Job completed", "job", name, "elapsed", elapsed)
			jobRuns.WithLabelValues(name, "ok").Inc()
		}
		jobDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		w.recordRun(name, start, elapsed, err)
		w.trackJobEnd(err != nil)
	}()

	return job(w.ctx)
}

// ScheduleAt runs a job once at a specific time. A time in the past runs it
// right away. Pending jobs are dropped on shutdown.
func (w *Worker) ScheduleAt(at time.Time, job Job) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		logger.Warn("[Scheduler] Shutting down, timed job dropped")
		return
	}
	w.wg.Add(1)
	w.mu.RUnlock()

	go func() {
		defer w.wg.Done()
		timer := time.NewTimer(time.Until(at))
		defer timer.Stop()

		select {
		case <-w.ctx.Done():
			return
		case <-timer.C:
		}

		w.trackJobStart()
		failed := false
		defer func() {
			if r := recover(); r != nil {
				logger.Error(fmt.Sprintf("[Scheduler] Timed job panic: %v", r))
				failed = true
			}
			w.trackJobEnd(failed)
		}()
		if err := job(w.ctx); err != nil {
			logger.Error("[Scheduler] Timed job error", "error", err)
			failed = true
		}
	}()
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.cancel()
	close(w.queue)
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

// Scheduled returns a snapshot of every named job
func (w *Worker) Scheduled() []JobRun {
	w.mu.RLock()
	defer w.mu.RUnlock()
	runs := make([]JobRun, 0, len(w.history))
	for _, r := range w.history {
		runs = append(runs, *r)
	}
	return runs
}

func (w *Worker) recordRun(name string, start time.Time, elapsed time.Duration, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	run, ok := w.history[name]
	if !ok {
		run = &JobRun{Name: name}
		w.history[name] = run
	}
	run.Runs++
	run.LastRun = &start
	run.Duration = elapsed.String()
	run.LastError = ""
	if err != nil {
		run.Failures++
		run.LastError = err.Error()
	}
}

func (w *Worker) trackJobStart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd(failed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
	if failed {
		w.stats.FailedJobs++
	}
}
