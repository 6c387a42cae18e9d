// Package worker runs background side effects (persistence, publishing) off
// the request path.
package worker

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one unit of background work for a session.
type Job struct {
	Name      string
	SessionID string
	Run       func(ctx context.Context) error
}

// Pool runs jobs on a fixed set of workers. Jobs with the same SessionID always
// land on the same worker, so they run in submission order.
type Pool struct {
	logger  *zap.Logger
	queues  []chan Job
	timeout time.Duration

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewPool creates a pool of size workers, each with a queue of depth jobs.
// timeout bounds a single job run.
func NewPool(size, depth int, timeout time.Duration, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{logger: logger, timeout: timeout, queues: make([]chan Job, size)}
	for i := range p.queues {
		p.queues[i] = make(chan Job, depth)
	}
	return p
}

// Start launches the workers. They exit once Close has drained their queues.
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(len(p.queues))
	for i, q := range p.queues {
		p.logger.Debug("worker started", zap.Int("worker_id", i+1))
		go p.work(ctx, i, q)
	}
}

// Submit queues job. It blocks while the worker's queue is full and reports
// false once the pool is closed.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("job dropped, pool closed", zap.String("job", job.Name), zap.String("session_id", job.SessionID))
		return false
	}
	p.queues[p.shard(job.SessionID)] <- job
	return true
}

// Close stops accepting jobs and waits for queued ones to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		for _, q := range p.queues {
			close(q)
		}
		p.mu.Unlock()
	})
	p.wg.Wait()
}

func (p *Pool) shard(sessionID string) int {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(p.queues)))
}

func (p *Pool) work(ctx context.Context, id int, jobs <-chan Job) {
	defer p.wg.Done()
	for job := range jobs {
		p.run(ctx, id, job)
	}
}

func (p *Pool) run(ctx context.Context, id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", zap.Int("worker_id", id+1), zap.String("job", job.Name), zap.Any("panic", r))
		}
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := job.Run(ctx); err != nil {
		p.logger.Warn("job failed",
			zap.Int("worker_id", id+1),
			zap.String("job", job.Name),
			zap.String("session_id", job.SessionID),
			zap.Error(err))
	}
}
