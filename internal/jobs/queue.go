// Package jobs runs deferred work (email delivery, notifications) outside the
// request transaction. Execution is at-least-once with a fixed retry budget;
// callers only enqueue and never wait for completion.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/taskhive/taskhive/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Config  Config             `optional:"true"`
	Metrics *telemetry.Metrics `optional:"true"`
}

type Queue struct {
	log     *zap.Logger
	cfg     Config
	metrics *telemetry.Metrics
	ch      chan Job
	wg      sync.WaitGroup
}

func New(p Params) *Queue {
	cfg := p.Config.withDefaults()
	return &Queue{
		log:     p.Log.Named("jobs.queue"),
		cfg:     cfg,
		metrics: p.Metrics,
		ch:      make(chan Job, cfg.QueueSize),
	}
}

// Enqueue hands a job to the worker pool. Blocks only when the buffer is full.
func (q *Queue) Enqueue(job Job) {
	if job.Run == nil {
		return
	}
	q.ch <- job
}

// Start launches the worker pool. Workers drain the queue until ctx is done.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-q.ch:
					q.process(ctx, job)
				}
			}
		}()
	}
}

// Wait blocks until every worker has exited.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) process(ctx context.Context, job Job) {
	var err error
	for attempt := 0; attempt <= q.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := q.cfg.BaseBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
		if err = job.Run(ctx); err == nil {
			q.metrics.CountJobRun(job.Name, "ok")
			return
		}
		q.log.Warn("job attempt failed",
			zap.String("job", job.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	q.metrics.CountJobRun(job.Name, "error")
	q.log.Error("job exhausted retries", zap.String("job", job.Name), zap.Error(err))
}
