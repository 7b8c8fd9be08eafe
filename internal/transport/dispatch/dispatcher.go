// Package dispatch implements the single ordered pipeline every mutation in
// the system flows through. Client sessions and the device bridge enqueue
// jobs; exactly one worker drains them in arrival order, so attach/detach,
// dedup and create/delete races are resolved by total ordering instead of
// locks in the domain layer.
package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/api/metrics"
	"github.com/fieldtrack/assettrack/internal/transport"
)

const queueCapacity = 1024

// Job pairs a raw inbound message with the sink that routes the reply back to
// the originating connection. A nil Reply marks fire-and-forget jobs (device
// bridge).
type Job struct {
	Raw   string
	Reply func(outbound string)
}

// HandlerFunc handles one message type. Returning an empty outbound string
// means no reply is sent.
type HandlerFunc func(ctx context.Context, env transport.Envelope) (string, error)

// Dispatcher routes jobs from a bounded FIFO queue to the handler registered
// for each exact message type. The table is built once at startup; Handle
// must not be called after Run.
type Dispatcher struct {
	queue chan Job
	table map[string]HandlerFunc
	log   zerolog.Logger
}

// New creates a Dispatcher with an empty dispatch table.
func New(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		queue: make(chan Job, queueCapacity),
		table: make(map[string]HandlerFunc),
		log:   log,
	}
}

// Handle registers the handler for an exact message type.
func (d *Dispatcher) Handle(msgType string, h HandlerFunc) {
	d.table[msgType] = h
}

// Enqueue appends a job to the queue. It only blocks when the queue is full.
func (d *Dispatcher) Enqueue(raw string, reply func(string)) {
	d.queue <- Job{Raw: raw, Reply: reply}
	metrics.DispatchQueueDepth.Set(float64(len(d.queue)))
}

// Run drains the queue until ctx is cancelled. It is the only goroutine that
// touches the domain services' write paths.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.Info().Int("handlers", len(d.table)).Msg("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("dispatcher stopped")
			return
		case job := <-d.queue:
			metrics.DispatchQueueDepth.Set(float64(len(d.queue)))
			d.process(ctx, job)
		}
	}
}

// process handles one job. Failures of any kind are confined to the job: the
// worker logs and moves on.
func (d *Dispatcher) process(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			metrics.MessagesDroppedTotal.WithLabelValues("panic").Inc()
			d.log.Error().Interface("panic", r).Str("raw", truncateRaw(job.Raw)).Msg("handler panicked")
		}
	}()

	start := time.Now()

	env, err := transport.Decode(job.Raw)
	if err != nil {
		metrics.MessagesDroppedTotal.WithLabelValues("malformed").Inc()
		d.log.Warn().Err(err).Msg("dropping malformed message")
		return
	}

	handler, ok := d.table[env.Type]
	if !ok {
		metrics.MessagesDroppedTotal.WithLabelValues("unrecognized_type").Inc()
		d.log.Warn().Str("type", env.Type).Msg("dropping message with unrecognized type")
		return
	}

	outbound, err := handler(ctx, env)
	if err != nil {
		metrics.MessagesDroppedTotal.WithLabelValues("handler_error").Inc()
		d.log.Warn().Err(err).Str("type", env.Type).Msg("handler failed, no reply")
		return
	}

	if outbound != "" && job.Reply != nil {
		// The sink bounds its own delivery time (write deadline) and swallows
		// closed-connection errors, so a slow or gone client cannot stall the
		// worker indefinitely.
		job.Reply(outbound)
	}

	metrics.MessagesDispatchedTotal.WithLabelValues(env.Type).Inc()
	metrics.DispatchDuration.WithLabelValues(env.Type).Observe(time.Since(start).Seconds())
}

func truncateRaw(s string) string {
	if len(s) > 128 {
		return s[:128] + "…"
	}
	return s
}
