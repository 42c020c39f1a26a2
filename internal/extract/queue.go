package extract

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"bloodbridge/constants"
)

// Job is one document to extract.
type Job struct {
	ID          uuid.UUID
	Path        string
	Document    constants.DocumentType
	SubmittedAt time.Time
}

// JobResult pairs a job with its outcome. Exactly one of Identity and Report
// is set on success, matching the job's document type.
type JobResult struct {
	Job      Job
	Identity *IdentityResult
	Report   *ReportResult
	Err      error
}

// Queue runs extractions on a fixed worker pool. Used for batch intake
// (donation-camp folders of scanned documents) where per-file latency does
// not matter but throughput does.
type Queue struct {
	hybrid  *Hybrid
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan Job
	results chan JobResult
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
}

type QueueOption func(*Queue)

func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithJobTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(hybrid *Hybrid, logger *slog.Logger, opts ...QueueOption) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		hybrid:  hybrid,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
		results: make(chan JobResult, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

// Results delivers one JobResult per enqueued job. Closed after Shutdown
// drains the workers.
func (q *Queue) Results() <-chan JobResult {
	return q.results
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("extract.worker.started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					result := q.run(ctx, job)
					cancel()

					if result.Err != nil {
						q.logger.Error("extract.worker.failed",
							"worker_id", workerID, "job_id", job.ID, "path", job.Path, "error", result.Err)
					} else {
						q.logger.Info("extract.worker.ok",
							"worker_id", workerID, "job_id", job.ID, "path", job.Path)
					}
					q.results <- result
				}

				q.logger.Info("extract.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) run(ctx context.Context, job Job) JobResult {
	result := JobResult{Job: job}
	switch job.Document {
	case constants.DocBloodReport:
		result.Report, result.Err = q.hybrid.ExtractReport(ctx, job.Path)
	default:
		result.Identity, result.Err = q.hybrid.ExtractIdentity(ctx, job.Path)
	}
	return result
}

// Enqueue submits a job, blocking when the queue is full. Jobs submitted
// after Shutdown are dropped with a warning.
func (q *Queue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return nil
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue full, applying backpressure", "path", job.Path)
		q.ch <- job
	}
	return nil
}

// Shutdown stops intake and waits for in-flight jobs, bounded by ctx.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(q.results)
		close(done)
	}()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
