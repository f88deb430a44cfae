package dsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

const (
	// defaultWorkerCount is used when hardware parallelism cannot be determined.
	defaultWorkerCount = 4

	// workerQueueSize bounds how many dispatched tasks a single worker may
	// have outstanding before dispatch backs off to the shared queue.
	workerQueueSize = 64
)

var (
	// ErrNoWorkers is returned by Submit when the pool has no live workers.
	ErrNoWorkers = errors.New("no compute workers available")

	// ErrPoolClosed is returned for tasks rejected because the pool was terminated.
	ErrPoolClosed = errors.New("worker pool is terminated")

	// ErrWorkerFailed is returned for tasks outstanding on a worker that died.
	ErrWorkerFailed = errors.New("compute worker failed")
)

// Request describes a single FFT computation.
//
// Ownership of Samples transfers to the pool on Submit: the caller must not
// read or reuse the buffer after a successful submission.
type Request struct {
	Samples    []complex128 // Capture buffer, moved into the pool
	SampleRate float64      // Sample rate in Hz, carried for diagnostics
	Priority   int          // Higher values dispatch first
	FFTSize    int          // Optional transform size, 0 selects automatically
}

// Task is the pool's handle for a submitted computation. Its result is
// resolved exactly once, either with a spectrum or with an error.
type Task struct {
	id      string
	samples []complex128
	fftSize int

	done   chan struct{}
	result *Result
	err    error

	worker int // assigned worker id, -1 while queued; guarded by pool mu
}

// ID returns the task's unique correlation id.
func (t *Task) ID() string { return t.id }

// Wait blocks until the task resolves or ctx is done.
func (t *Task) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return t.result, t.err
	}
}

type worker struct {
	id     int
	tasks  chan *Task
	load   int  // outstanding task count, guarded by pool mu
	failed bool // guarded by pool mu
}

// WithLogger sets the logger for the pool.
func WithLogger(logger *slog.Logger) func(*Pool) {
	return func(p *Pool) {
		p.logger = logger.With(slog.String("component", "fft-pool"))
	}
}

// WithWorkerCount sets the number of parallel compute workers. Values below
// one select the available hardware parallelism.
func WithWorkerCount(n int) func(*Pool) {
	return func(p *Pool) {
		p.workerCount = n
	}
}

// Pool load-balances FFT computations across a fixed set of parallel workers.
// Submissions are ordered by priority in a shared queue and dispatched
// greedily to the least-loaded worker. A Pool is safe for concurrent use and
// may be shared by multiple scans; it does not isolate callers from one
// another.
type Pool struct {
	logger      *slog.Logger
	workerCount int

	// compute and startHook are replaceable in tests to exercise the
	// degraded-construction and worker-failure paths.
	compute   func(samples []complex128, size int) (*Result, error)
	startHook func(id int) error

	mu      sync.Mutex
	queue   *Queue[*Task]
	pending map[string]*Task
	workers []*worker
	closed  bool

	wg sync.WaitGroup
}

// NewPool creates a pool and spins up its workers. A worker that fails to
// start is logged and excluded; the pool degrades to fewer workers rather
// than failing construction. With zero live workers, Submit fails fast.
func NewPool(options ...func(*Pool)) *Pool {
	p := &Pool{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
		compute: computeSpectrum,
		queue:   NewQueue[*Task](),
		pending: make(map[string]*Task),
	}

	for _, option := range options {
		option(p)
	}

	n := p.workerCount
	if n <= 0 {
		n = runtime.NumCPU()
		if n < 1 {
			n = defaultWorkerCount
		}
	}

	for i := 0; i < n; i++ {
		if p.startHook != nil {
			if err := p.startHook(i); err != nil {
				p.logger.Warn("excluding worker that failed to start",
					slog.Int("worker", i), slog.String("error", err.Error()))
				continue
			}
		}

		w := &worker{id: i, tasks: make(chan *Task, workerQueueSize)}
		p.workers = append(p.workers, w)

		p.wg.Add(1)
		go p.runWorker(w)
	}

	if len(p.workers) == 0 {
		p.logger.Warn("pool constructed with zero workers, submissions will fail")
	}

	return p
}

// Submit queues an FFT computation and attempts an immediate dispatch.
// The returned Task resolves once the computation completes or is rejected.
func (p *Pool) Submit(req Request) (*Task, error) {
	if len(req.Samples) == 0 {
		return nil, ErrNoSamples
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if p.liveWorkersLocked() == 0 {
		return nil, ErrNoWorkers
	}

	t := &Task{
		id:      uuid.NewString(),
		samples: req.Samples,
		fftSize: req.FFTSize,
		done:    make(chan struct{}),
		worker:  -1,
	}

	p.pending[t.id] = t
	p.queue.Push(t, req.Priority)
	p.dispatchLocked()

	return t, nil
}

// QueueDepth returns the number of tasks queued and not yet dispatched.
func (p *Pool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// WorkerLoads returns a snapshot of outstanding task counts per worker.
func (p *Pool) WorkerLoads() map[int]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	loads := make(map[int]int, len(p.workers))
	for _, w := range p.workers {
		if !w.failed {
			loads[w.id] = w.load
		}
	}
	return loads
}

// Terminate stops all workers and rejects every unresolved task with
// ErrPoolClosed. It blocks until the workers have exited and is safe to call
// more than once.
func (p *Pool) Terminate() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true

	for id, t := range p.pending {
		delete(p.pending, id)
		t.err = ErrPoolClosed
		close(t.done)
	}
	p.queue.Clear()

	for _, w := range p.workers {
		if !w.failed {
			close(w.tasks)
		}
		w.load = 0
	}
	p.workers = nil
	p.mu.Unlock()

	p.wg.Wait()
}

// runWorker consumes dispatched tasks until the pool closes its channel.
// A panic escaping the transform marks the worker failed and rejects every
// task outstanding on it, so no caller is left waiting forever.
func (p *Pool) runWorker(w *worker) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			p.failWorker(w, fmt.Errorf("%w: worker %d: %v", ErrWorkerFailed, w.id, r))
		}
	}()

	for t := range w.tasks {
		select {
		case <-t.done:
			continue // already rejected
		default:
		}

		result, err := p.compute(t.samples, t.fftSize)
		p.completeTask(w, t, result, err)
	}
}

func (p *Pool) completeTask(w *worker, t *Task, result *Result, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w.load > 0 {
		w.load--
	}

	if _, ok := p.pending[t.id]; ok {
		delete(p.pending, t.id)
		t.result = result
		t.err = err
		close(t.done)
	}

	// Keep the pipeline full: pull the next queued task now that a slot freed up.
	p.dispatchLocked()
}

func (p *Pool) failWorker(w *worker, err error) {
	p.logger.Error(err.Error(), slog.Int("worker", w.id))

	p.mu.Lock()
	defer p.mu.Unlock()

	w.failed = true
	w.load = 0

	// Drain anything still sitting in the worker's channel; those tasks share
	// the same fate as the one that killed it.
	for {
		select {
		case <-w.tasks:
			continue
		default:
		}
		break
	}

	for id, t := range p.pending {
		if t.worker == w.id {
			delete(p.pending, id)
			t.err = err
			close(t.done)
		}
	}

	p.dispatchLocked()
}

// dispatchLocked moves tasks from the shared queue to the least-loaded live
// worker until the queue empties or every worker's channel is full. Greedy
// and best-effort: ties break on the first worker found with minimum load.
func (p *Pool) dispatchLocked() {
	for {
		t, ok := p.queue.Peek()
		if !ok {
			return
		}

		w := p.leastLoadedLocked()
		if w == nil {
			return
		}

		select {
		case w.tasks <- t:
			p.queue.Pop()
			t.worker = w.id
			w.load++
		default:
			return // saturated, retry on next completion
		}
	}
}

func (p *Pool) leastLoadedLocked() *worker {
	var best *worker
	for _, w := range p.workers {
		if w.failed {
			continue
		}
		if best == nil || w.load < best.load {
			best = w
		}
	}
	return best
}

func (p *Pool) liveWorkersLocked() int {
	var n int
	for _, w := range p.workers {
		if !w.failed {
			n++
		}
	}
	return n
}
