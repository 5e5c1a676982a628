// Package syncqueue provides a small sharded work queue that keeps remote
// writes FIFO per key (one key per entity collection) while allowing
// parallelism across keys.
//
// Contract: callers must not invoke Submit concurrently for the same key;
// FIFO ordering relies on that external serialisation.
package syncqueue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Job is one remote write. Run performs the write; OnFailure, if set, is
// invoked exactly once when the job fails fast or exhausts its retries —
// the local store uses it to roll an optimistic mutation back.
type Job struct {
	Run       func(ctx context.Context) error
	OnFailure func(err error)
}

// Config tunes the executor. Zero values take defaults.
type Config struct {
	Shards         int
	QueueSize      int
	EnqueueTimeout time.Duration
	MaxAttempts    int
	BaseBackoff    time.Duration
	MaxInterval    time.Duration
	Logger         zerolog.Logger
}

type queuedJob struct {
	ctx context.Context
	job Job
}

// Executor runs jobs on worker goroutines partitioned by a stable hash of
// the key. FIFO ordering holds within a shard.
type Executor struct {
	cfg    Config
	queues []chan queuedJob
	log    zerolog.Logger

	done   chan struct{}
	closed uint32

	wg sync.WaitGroup
}

// New constructs the executor and starts its shard workers.
func New(cfg Config) *Executor {
	if cfg.Shards <= 0 {
		cfg.Shards = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 128
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 100 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 10 * time.Second
	}

	e := &Executor{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		log:    cfg.Logger.With().Str("component", "syncqueue").Logger(),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		e.queues[i] = ch
		e.wg.Add(1)
		go e.runWorker(i, ch)
	}
	return e
}

// Submit enqueues job for the shard derived from key.
//
//   - Returns nil on success.
//   - Returns ErrExecutorClosed if the executor is stopped.
//   - Returns *QueueFullError if the shard stays full past EnqueueTimeout.
//   - Returns ctx.Err() if the caller context is cancelled first.
func (e *Executor) Submit(ctx context.Context, key string, job Job) error {
	if atomic.LoadUint32(&e.closed) == 1 {
		return ErrExecutorClosed
	}
	select {
	case <-e.done:
		return ErrExecutorClosed
	default:
	}

	qj := queuedJob{ctx: ctx, job: job}
	shard := e.shardFor(key)
	ch := e.queues[shard]

	timer := time.NewTimer(e.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- qj:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-e.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return &QueueFullError{Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

// Barrier enqueues a no-op on the shard for key and waits until it runs,
// guaranteeing all previously submitted jobs for that key have completed.
func (e *Executor) Barrier(ctx context.Context, key string) error {
	done := make(chan struct{})
	j := Job{Run: func(context.Context) error {
		close(done)
		return nil
	}}
	if err := e.Submit(ctx, key, j); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Stop signals every worker to drain its queue, waits for them, and
// returns. Idempotent and safe for concurrent use.
func (e *Executor) Stop() {
	if !atomic.CompareAndSwapUint32(&e.closed, 0, 1) {
		return
	}
	e.log.Info().Int("shards", e.cfg.Shards).Msg("stopping sync executor")
	close(e.done)
	e.wg.Wait()
	e.log.Info().Msg("sync executor stopped, queues drained")
}

// Close lets Executor satisfy io.Closer.
func (e *Executor) Close() error {
	e.Stop()
	return nil
}

func (e *Executor) runWorker(idx int, ch <-chan queuedJob) {
	defer e.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Int("worker", idx).Interface("panic", r).Msg("sync worker panic")
		}
	}()

	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			if qj.job.Run == nil {
				continue
			}

			select {
			case <-qj.ctx.Done():
				e.fail(qj.job, qj.ctx.Err(), label)
			default:
				e.runWithRetry(qj, label)
			}

			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-e.done:
			// Drain remaining jobs, preserving FIFO, then exit.
			for {
				select {
				case qj := <-ch:
					if qj.job.Run != nil {
						if err := qj.job.Run(qj.ctx); err != nil {
							e.fail(qj.job, err, label)
						}
					}
				default:
					queueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

func (e *Executor) runWithRetry(qj queuedJob, label string) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = e.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = e.cfg.MaxInterval
	exp.Reset()

	attempts := 0
	for {
		err := qj.job.Run(qj.ctx)
		if err == nil {
			return
		}
		if irrecoverable(err) || attempts >= e.cfg.MaxAttempts-1 {
			e.fail(qj.job, err, label)
			return
		}

		attempts++
		select {
		case <-time.After(exp.NextBackOff()):
		case <-e.done:
			e.fail(qj.job, err, label)
			return
		case <-qj.ctx.Done():
			e.fail(qj.job, qj.ctx.Err(), label)
			return
		}
	}
}

func (e *Executor) fail(job Job, err error, label string) {
	terminalFailuresTotal.WithLabelValues(label).Inc()
	e.log.Error().Err(err).Msg("sync job failed terminally")
	if job.OnFailure == nil {
		return
	}
	func() {
		// Guard against panics in the caller-supplied handler.
		defer func() {
			if r := recover(); r != nil {
				e.log.Error().Interface("panic", r).Msg("sync failure handler panic")
			}
		}()
		job.OnFailure(err)
	}()
}

func (e *Executor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % e.cfg.Shards
}
