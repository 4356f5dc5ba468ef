package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
)

var (
	// ErrQueueFull indicates the runner cannot accept new jobs right now.
	ErrQueueFull = errors.New("job queue is full")
	// ErrQueueClosed indicates the runner has been shut down.
	ErrQueueClosed = errors.New("job queue is closed")
)

// Config controls runner behaviour.
type Config struct {
	Workers   int
	QueueSize int
}

// Runner executes queued jobs on a fixed worker pool. Jobs sharing a key
// run serially; jobs are attempted exactly once and retrying is the
// caller's decision.
type Runner struct {
	store *Store
	cfg   Config

	queue chan *queueItem

	keyedLocks *keyedMutex

	stopCh chan struct{}
	wg     sync.WaitGroup

	once sync.Once
}

type queueItem struct {
	id   string
	key  string
	fn   func(context.Context) error
	done chan error
}

// NewRunner creates a runner with the provided configuration.
func NewRunner(store *Store, cfg Config) *Runner {
	normalized := normalizeConfig(cfg)
	r := &Runner{
		store:      store,
		cfg:        normalized,
		queue:      make(chan *queueItem, normalized.QueueSize),
		keyedLocks: newKeyedMutex(),
		stopCh:     make(chan struct{}),
	}
	r.startWorkers()
	return r
}

func normalizeConfig(cfg Config) Config {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers * 4
	}
	return cfg
}

func (r *Runner) startWorkers() {
	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

// Submit queues fn for execution and returns the job id without waiting
// for the result. An empty key leaves the job unserialised.
func (r *Runner) Submit(name, key string, fn func(context.Context) error) (string, error) {
	return r.enqueue(name, key, fn, nil)
}

// Do queues fn, waits for it to finish and returns its error. ctx bounds
// only the wait: a job already picked up by a worker runs to completion.
func (r *Runner) Do(ctx context.Context, name, key string, fn func(context.Context) error) error {
	done := make(chan error, 1)
	if _, err := r.enqueue(name, key, fn, done); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) enqueue(name, key string, fn func(context.Context) error, done chan error) (string, error) {
	if fn == nil {
		return "", errors.New("jobs enqueue: fn is nil")
	}

	select {
	case <-r.stopCh:
		return "", ErrQueueClosed
	default:
	}

	id := r.store.Create(name)
	select {
	case r.queue <- &queueItem{id: id, key: key, fn: fn, done: done}:
		r.store.AddLog(id, "info", "Job queued")
		return id, nil
	default:
		r.store.Fail(id, ErrQueueFull.Error())
		return "", ErrQueueFull
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			return
		case item, ok := <-r.queue:
			if !ok {
				return
			}
			r.process(item)
		}
	}
}

func (r *Runner) process(item *queueItem) {
	if item.key != "" {
		r.keyedLocks.Lock(item.key)
	}

	r.store.UpdateStatus(item.id, StatusRunning)
	r.store.AddLog(item.id, "info", "Job started")
	err := item.fn(context.Background())

	if item.key != "" {
		r.keyedLocks.Unlock(item.key)
	}

	if err != nil {
		log.Printf("Job %s failed: %v", item.id, err)
		r.store.Fail(item.id, err.Error())
		r.store.AddLog(item.id, "error", err.Error())
	} else {
		r.store.UpdateStatus(item.id, StatusCompleted)
		r.store.AddLog(item.id, "success", "Job completed")
	}

	if item.done != nil {
		item.done <- err
	}
}

// Shutdown gracefully stops the runner. Jobs still queued when it returns
// never run and stay pending.
func (r *Runner) Shutdown(ctx context.Context) {
	r.once.Do(func() {
		close(r.stopCh)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return
	case <-done:
		return
	}
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	k.mu.Unlock()

	if !ok {
		return
	}

	m.Unlock()
}
