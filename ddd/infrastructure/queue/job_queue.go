package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"transcription-service/ddd/domain/entity"
)

// JobQueue buffers processing jobs between the submission side and the
// worker pool.
type JobQueue interface {
	// Enqueue adds a job; returns an error when the queue is closed or full.
	Enqueue(ctx context.Context, job *entity.ProcessingJob) error

	// Dequeue blocks until a job or context cancellation.
	Dequeue(ctx context.Context) (*entity.ProcessingJob, error)

	// TryDequeue returns (nil, nil) when the queue is empty.
	TryDequeue(ctx context.Context) (*entity.ProcessingJob, error)

	Size() int

	Close() error

	IsClosed() bool
}

// MemoryJobQueue is a bounded channel-backed queue.
type MemoryJobQueue struct {
	queue   chan *entity.ProcessingJob
	closed  bool
	mu      sync.RWMutex
	metrics *QueueMetrics
}

// QueueMetrics counts queue traffic for the health endpoint.
type QueueMetrics struct {
	EnqueueCount uint64
	DequeueCount uint64
	MaxSize      int
	CurrentSize  int
	mu           sync.RWMutex
}

func NewMemoryJobQueue(capacity int) *MemoryJobQueue {
	if capacity <= 0 {
		capacity = 100
	}

	return &MemoryJobQueue{
		queue: make(chan *entity.ProcessingJob, capacity),
		metrics: &QueueMetrics{
			MaxSize: capacity,
		},
	}
}

func (q *MemoryJobQueue) Enqueue(ctx context.Context, job *entity.ProcessingJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	select {
	case q.queue <- job:
		q.updateEnqueueMetrics()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue is full")
	}
}

func (q *MemoryJobQueue) Dequeue(ctx context.Context) (*entity.ProcessingJob, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, fmt.Errorf("queue is closed")
	}
	ch := q.queue
	q.mu.RUnlock()

	select {
	case job, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("queue is closed")
		}
		q.updateDequeueMetrics()
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryJobQueue) TryDequeue(ctx context.Context) (*entity.ProcessingJob, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, fmt.Errorf("queue is closed")
	}

	select {
	case job := <-q.queue:
		q.updateDequeueMetrics()
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, nil
	}
}

func (q *MemoryJobQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return 0
	}
	return len(q.queue)
}

func (q *MemoryJobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

func (q *MemoryJobQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// GetMetrics returns a snapshot of the counters.
func (q *MemoryJobQueue) GetMetrics() QueueMetrics {
	q.metrics.mu.RLock()
	defer q.metrics.mu.RUnlock()

	metrics := QueueMetrics{
		EnqueueCount: q.metrics.EnqueueCount,
		DequeueCount: q.metrics.DequeueCount,
		MaxSize:      q.metrics.MaxSize,
	}
	metrics.CurrentSize = q.Size()
	return metrics
}

func (q *MemoryJobQueue) updateEnqueueMetrics() {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	q.metrics.EnqueueCount++
}

func (q *MemoryJobQueue) updateDequeueMetrics() {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	q.metrics.DequeueCount++
}

// PriorityJobQueue drains a high-priority lane before the normal one.
type PriorityJobQueue struct {
	highQueue   JobQueue
	normalQueue JobQueue
}

// NewPriorityJobQueue splits the capacity across both lanes.
func NewPriorityJobQueue(capacity int) *PriorityJobQueue {
	if capacity < 2 {
		capacity = 2
	}
	return &PriorityJobQueue{
		highQueue:   NewMemoryJobQueue(capacity / 2),
		normalQueue: NewMemoryJobQueue(capacity - capacity/2),
	}
}

func (pq *PriorityJobQueue) Enqueue(ctx context.Context, job *entity.ProcessingJob) error {
	if job != nil && job.Priority >= 5 {
		return pq.highQueue.Enqueue(ctx, job)
	}
	return pq.normalQueue.Enqueue(ctx, job)
}

func (pq *PriorityJobQueue) Dequeue(ctx context.Context) (*entity.ProcessingJob, error) {
	if job, err := pq.highQueue.TryDequeue(ctx); err == nil && job != nil {
		return job, nil
	}
	if job, err := pq.normalQueue.TryDequeue(ctx); err == nil && job != nil {
		return job, nil
	}
	// both lanes empty: block on the normal lane, peeking high periodically
	return pq.blockingDequeue(ctx)
}

func (pq *PriorityJobQueue) blockingDequeue(ctx context.Context) (*entity.ProcessingJob, error) {
	for {
		if job, err := pq.highQueue.TryDequeue(ctx); err != nil {
			return nil, err
		} else if job != nil {
			return job, nil
		}
		if job, err := pq.normalQueue.TryDequeue(ctx); err != nil {
			return nil, err
		} else if job != nil {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (pq *PriorityJobQueue) TryDequeue(ctx context.Context) (*entity.ProcessingJob, error) {
	if job, err := pq.highQueue.TryDequeue(ctx); err != nil || job != nil {
		return job, err
	}
	return pq.normalQueue.TryDequeue(ctx)
}

func (pq *PriorityJobQueue) Size() int {
	return pq.highQueue.Size() + pq.normalQueue.Size()
}

func (pq *PriorityJobQueue) Close() error {
	var errs []error
	if err := pq.highQueue.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := pq.normalQueue.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close priority queues: %v", errs)
	}
	return nil
}

func (pq *PriorityJobQueue) IsClosed() bool {
	return pq.highQueue.IsClosed() && pq.normalQueue.IsClosed()
}
