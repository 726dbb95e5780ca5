package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"transcription-service/ddd/domain/entity"
	"transcription-service/ddd/domain/gateway"
	"transcription-service/ddd/infrastructure/queue"
	"transcription-service/pkg/logger"
)

// ErrJobActive means the media id already has a queued or running job.
var ErrJobActive = errors.New("job already active for media")

// JobExecutor runs one processing job end-to-end.
type JobExecutor interface {
	Execute(ctx context.Context, job *entity.ProcessingJob) error
}

// WorkerStats is a snapshot of pool activity.
type WorkerStats struct {
	ProcessedJobs    uint64
	SuccessfulJobs   uint64
	FailedJobs       uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

// Dispatcher owns the worker pool draining the job queue. Submission and
// execution share the JobLocker, so at most one job per media id is ever
// queued or running.
type Dispatcher struct {
	jobQueue    queue.JobQueue
	executor    JobExecutor
	locker      gateway.JobLocker
	workerCount int

	running bool
	cancel  context.CancelFunc
	stats   WorkerStats
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

func NewDispatcher(jobQueue queue.JobQueue, executor JobExecutor, locker gateway.JobLocker, workerCount int) *Dispatcher {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Dispatcher{
		jobQueue:    jobQueue,
		executor:    executor,
		locker:      locker,
		workerCount: workerCount,
		stats: WorkerStats{
			StartTime: time.Now(),
		},
	}
}

// Submit acquires the per-media lock and enqueues the job. The lock stays
// held until the job finishes, so a duplicate submission is rejected with
// ErrJobActive while the first is queued or running.
func (d *Dispatcher) Submit(ctx context.Context, job *entity.ProcessingJob) error {
	acquired, err := d.locker.TryLock(ctx, job.MediaID)
	if err != nil {
		return fmt.Errorf("acquire job lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrJobActive, job.MediaID)
	}

	if err := d.jobQueue.Enqueue(ctx, job); err != nil {
		if uerr := d.locker.Unlock(ctx, job.MediaID); uerr != nil {
			logger.Errorf("release job lock after enqueue failure media=%s: %v", job.MediaID, uerr)
		}
		return fmt.Errorf("enqueue job: %w", err)
	}

	logger.Info("job submitted", map[string]interface{}{
		"job_id":   job.JobID,
		"media_id": job.MediaID,
		"priority": job.Priority,
	})
	return nil
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("dispatcher is already running")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	d.stats.StartTime = time.Now()

	logger.Infof("starting transcription dispatcher with %d workers", d.workerCount)

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.workerLoop(workerCtx, i)
	}
	return nil
}

// Stop cancels the workers and waits for in-flight jobs to return. The
// mutex is released before waiting because workers take it to update stats.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()

	d.wg.Wait()

	d.mu.Lock()
	d.running = false
	d.mu.Unlock()

	logger.Infof("transcription dispatcher stopped")
	return nil
}

func (d *Dispatcher) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

func (d *Dispatcher) GetStats() WorkerStats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

func (d *Dispatcher) workerLoop(ctx context.Context, workerID int) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := d.jobQueue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			if d.jobQueue.IsClosed() {
				return
			}
			logger.Warnf("worker %d dequeue failed: %v", workerID, err)
			continue
		}
		if job == nil {
			continue
		}

		d.runJob(ctx, workerID, job)
	}
}

func (d *Dispatcher) runJob(ctx context.Context, workerID int, job *entity.ProcessingJob) {
	d.markRunning(1)
	defer d.markRunning(-1)
	defer func() {
		if err := d.locker.Unlock(context.Background(), job.MediaID); err != nil {
			logger.Errorf("release job lock media=%s: %v", job.MediaID, err)
		}
	}()

	logger.Info("worker picked up job", map[string]interface{}{
		"worker_id": workerID,
		"job_id":    job.JobID,
		"media_id":  job.MediaID,
	})

	err := d.executor.Execute(ctx, job)
	d.recordResult(err == nil)
	if err != nil {
		logger.Warnf("worker %d job %s finished with error: %v", workerID, job.JobID, err)
	}
}

func (d *Dispatcher) markRunning(delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.CurrentlyRunning += delta
}

func (d *Dispatcher) recordResult(success bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.ProcessedJobs++
	if success {
		d.stats.SuccessfulJobs++
	} else {
		d.stats.FailedJobs++
	}
	d.stats.LastJobTime = time.Now()
}
