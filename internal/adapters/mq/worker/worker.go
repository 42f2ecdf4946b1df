// Package worker runs queued allocation scenarios on a fixed set of
// goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/escala/internal/adapters/mq/queue"
	"github.com/okian/escala/internal/domain/model"
	"github.com/okian/escala/pkg/logger"
	"github.com/okian/escala/pkg/metrics"
)

const (
	poolShutdownTimeout = 30 * time.Second
)

// Sentinel errors for this package.
var (
	ErrQueueFull = errors.New("scenario queue full")
	ErrStopped   = errors.New("worker pool stopped")
)

// Builder builds one roster. squad.Engine satisfies it.
type Builder interface {
	Build(ctx context.Context, players []model.Player, budget float64, formation string) (model.Roster, error)
}

// Queue is the consumer side of queue.Queue.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until its queue closes or it is shut down.
type Worker struct {
	queue   Queue
	builder Builder
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker reading from q.
func NewWorker(q Queue, b Builder, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		builder:  b,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop. It returns when ctx ends, Shutdown is called
// or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown stops the worker and waits for it to exit.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) process(ctx context.Context, j queue.Job) { //nolint:gocritic // hugeParam: received by value from the channel
	metrics.AddWorkerBusy(1)
	defer metrics.AddWorkerBusy(-1)

	start := time.Now()
	res := model.ScenarioResult{Index: j.Index, Scenario: j.Scenario}

	roster, err := w.builder.Build(ctx, j.Players, j.Scenario.Budget, j.Scenario.Formation)
	if err != nil {
		metrics.RecordScenarioError()
		w.logger.Debug(ctx, "scenario failed",
			logger.Int("index", j.Index),
			logger.String("formation", j.Scenario.Formation),
			logger.Error(err),
		)
		res.Err = err
	} else {
		res.Roster = &roster
	}
	metrics.RecordScenarioLatency(float64(time.Since(start).Microseconds()) / 1000)

	if j.Reply != nil {
		j.Reply <- res
	}
}

// Pool manages a queue and the workers draining it.
type Pool struct {
	workers []*Worker
	queue   *queue.InMemoryQueue
	started atomic.Bool
	running atomic.Bool
	stopped chan struct{}

	logger logger.Logger
}

// NewPool creates workerCount workers over a fresh queue. A count below one
// means runtime.NumCPU().
func NewPool(workerCount int, b Builder, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	cfg := poolConfig{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	capacity := cfg.capacity
	if capacity < 1 {
		capacity = workerCount * 64
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   queue.NewInMemoryQueue(queue.WithCapacity(capacity)),
		stopped: make(chan struct{}),
		logger:  cfg.logger.Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(p.queue, b,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(cfg.logger),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start launches every worker. When ctx ends the pool stops accepting
// work; jobs already queued are still built and answered.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	p.running.Store(true)
	workCtx := context.WithoutCancel(ctx)
	for _, w := range p.workers {
		go w.Run(workCtx)
	}
	go p.watch(ctx)
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

func (p *Pool) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		if p.stop(ctx) {
			p.logger.Info(ctx, "context ended; worker pool draining")
		}
	case <-p.stopped:
	}
}

// stop closes the queue once. It reports whether this call did it.
func (p *Pool) stop(ctx context.Context) bool {
	if !p.running.CompareAndSwap(true, false) {
		return false
	}
	close(p.stopped)
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	return true
}

// Run allocates every scenario against players and returns the results in
// scenario order. A scenario the queue refuses gets ErrQueueFull; one still
// pending when ctx ends gets ctx.Err().
func (p *Pool) Run(ctx context.Context, players []model.Player, scenarios []model.Scenario) ([]model.ScenarioResult, error) {
	if !p.running.Load() {
		return nil, ErrStopped
	}

	results := make([]model.ScenarioResult, len(scenarios))
	reply := make(chan model.ScenarioResult, len(scenarios))
	pending := make(map[int]bool, len(scenarios))

	for i, s := range scenarios {
		results[i] = model.ScenarioResult{Index: i, Scenario: s}
		ok := p.queue.Enqueue(ctx, queue.Job{Index: i, Scenario: s, Players: players, Reply: reply})
		if !ok {
			results[i].Err = ErrQueueFull
			if p.queue.IsClosed() {
				results[i].Err = ErrStopped
			}
			continue
		}
		pending[i] = true
	}

	for len(pending) > 0 {
		select {
		case res := <-reply:
			results[res.Index] = res
			delete(pending, res.Index)
		case <-ctx.Done():
			for i := range pending {
				results[i].Err = ctx.Err()
			}
			return results, ctx.Err()
		}
	}
	return results, nil
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !p.started.Load() {
		return nil
	}
	p.stop(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
