package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"media-job-service/internal/metrics"
	"media-job-service/internal/service"
)

// JobProcessor is implemented by *Processor.
type JobProcessor interface {
	Process(ctx context.Context, jobID string) error
}

// Pool feeds claimed job ids to a fixed number of goroutines.
type Pool struct {
	queue      service.Queue
	processor  JobProcessor
	workers    int
	claimDelay time.Duration
	log        zerolog.Logger
}

func NewPool(queue service.Queue, processor JobProcessor, workers int, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	return &Pool{
		queue:      queue,
		processor:  processor,
		workers:    workers,
		claimDelay: 5 * time.Second,
		log:        log,
	}
}

// Run blocks until ctx is done and every in-flight job has returned.
func (p *Pool) Run(ctx context.Context) {
	p.log.Info().Int("workers", p.workers).Msg("worker pool started")

	jobCh := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l := p.log.With().Int("worker", n).Logger()
			for jobID := range jobCh {
				if err := p.processor.Process(ctx, jobID); err != nil {
					l.Error().Err(err).Str("job_id", jobID).Msg("process job")
					if errors.Is(err, ErrRetry) {
						continue
					}
				}

				// The job row holds its final status, or another worker owns it.
				if ackErr := p.queue.Ack(context.WithoutCancel(ctx), jobID); ackErr != nil {
					l.Error().Err(ackErr).Str("job_id", jobID).Msg("ack job")
				}
			}
		}(i + 1)
	}

	defer func() {
		close(jobCh)
		wg.Wait()
		p.log.Info().Msg("worker pool stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobID, err := p.queue.ClaimBlocking(ctx, p.claimDelay)
		if err != nil {
			// redis.Nil on an idle slot, or ctx ending.
			continue
		}
		select {
		case jobCh <- jobID:
		case <-ctx.Done():
			return
		}
	}
}

// Reaper returns claims older than VisibilityTimeout to the queue and
// samples the queue depth every Interval. VisibilityTimeout must exceed the
// longest a live worker holds one job.
type Reaper struct {
	Queue             service.Queue
	Interval          time.Duration
	VisibilityTimeout time.Duration
	Log               zerolog.Logger
	Metrics           *metrics.Metrics
}

func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reaper) tick(ctx context.Context) {
	n, err := r.Queue.RequeueStale(ctx, r.VisibilityTimeout, 100)
	if err != nil {
		r.Log.Error().Err(err).Msg("requeue stale jobs")
	} else if n > 0 {
		r.Log.Warn().Int64("requeued", n).Dur("visibility_timeout", r.VisibilityTimeout).Msg("requeued abandoned jobs")
	}

	depth, err := r.Queue.Depth(ctx)
	if err != nil {
		r.Log.Error().Err(err).Msg("queue depth")
		return
	}
	r.Metrics.SetQueueDepth(depth)
}
