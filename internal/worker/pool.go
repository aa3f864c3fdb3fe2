package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/baharkarakas/hello-server/internal/metrics"
)

// Task is a unit of work. The pool invokes each accepted Task exactly once.
type Task func()

// Pool runs tasks on a fixed set of worker goroutines fed by a shared Channel.
type Pool struct {
	name    string
	log     *slog.Logger
	onPanic PanicHandler

	ch      *Channel
	workers []*worker
	wg      sync.WaitGroup

	shutdownOnce sync.Once
	done         chan struct{}

	submitted atomic.Uint64
	rejected  atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
	busy      atomic.Int64

	m poolMetrics
}

type poolMetrics struct {
	depth     prometheus.Gauge
	busy      prometheus.Gauge
	submitted prometheus.Counter
	rejected  prometheus.Counter
	completed prometheus.Counter
	panicked  prometheus.Counter
	duration  prometheus.Observer
}

// Stats is a point-in-time view of the pool counters.
type Stats struct {
	Name      string `json:"name"`
	Workers   int    `json:"workers"`
	Queued    int    `json:"queued"`
	Busy      int64  `json:"busy"`
	Submitted uint64 `json:"submitted"`
	Rejected  uint64 `json:"rejected"`
	Completed uint64 `json:"completed"`
	Panicked  uint64 `json:"panicked"`
	Closed    bool   `json:"closed"`
}

// New starts a pool of size workers. size must be at least 1; nothing is
// started when validation fails.
func New(size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	p := &Pool{
		name: "default",
		log:  slog.Default(),
		ch:   NewChannel(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("pool", p.name)
	p.m = poolMetrics{
		depth:     metrics.WorkerQueueDepth.WithLabelValues(p.name),
		busy:      metrics.WorkersBusy.WithLabelValues(p.name),
		submitted: metrics.TasksSubmitted.WithLabelValues(p.name),
		rejected:  metrics.TasksRejected.WithLabelValues(p.name),
		completed: metrics.TasksCompleted.WithLabelValues(p.name),
		panicked:  metrics.TasksPanicked.WithLabelValues(p.name),
		duration:  metrics.TaskDuration.WithLabelValues(p.name),
	}

	p.workers = make([]*worker, size)
	for i := 0; i < size; i++ {
		w := &worker{id: i, pool: p}
		p.workers[i] = w
		p.wg.Add(1)
		go w.run()
	}

	p.log.Info("worker pool started", "workers", size)
	return p, nil
}

// Execute queues task and returns without waiting for it to run.
// It fails with ErrChannelClosed once shutdown has begun.
func (p *Pool) Execute(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	id, err := p.ch.Send(task)
	if err != nil {
		p.rejected.Add(1)
		p.m.rejected.Inc()
		return err
	}
	p.submitted.Add(1)
	p.m.submitted.Inc()
	p.m.depth.Set(float64(p.ch.Len()))
	p.log.Debug("task queued", "task", id)
	return nil
}

// Shutdown closes the task channel and blocks until every queued and
// running task has finished and all workers have exited. Calling it again
// waits for the same completion. It must not be called from inside a task.
func (p *Pool) Shutdown() {
	p.beginShutdown()
	<-p.done
}

// ShutdownContext is Shutdown with a bounded wait. When ctx expires first the
// workers keep draining in the background and ctx.Err() is returned.
func (p *Pool) ShutdownContext(ctx context.Context) error {
	p.beginShutdown()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements io.Closer.
func (p *Pool) Close() error {
	p.Shutdown()
	return nil
}

func (p *Pool) beginShutdown() {
	p.shutdownOnce.Do(func() {
		p.log.Info("worker pool shutting down", "queued", p.ch.Len())
		p.ch.Close()
		go func() {
			p.wg.Wait()
			p.m.depth.Set(0)
			p.log.Info("worker pool stopped",
				"completed", p.completed.Load(),
				"panicked", p.panicked.Load(),
			)
			close(p.done)
		}()
	})
}

// Done is closed once shutdown has completed.
func (p *Pool) Done() <-chan struct{} { return p.done }

func (p *Pool) Size() int { return len(p.workers) }

func (p *Pool) Name() string { return p.name }

func (p *Pool) Stats() Stats {
	return Stats{
		Name:      p.name,
		Workers:   len(p.workers),
		Queued:    p.ch.Len(),
		Busy:      p.busy.Load(),
		Submitted: p.submitted.Load(),
		Rejected:  p.rejected.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
		Closed:    p.ch.Closed(),
	}
}
