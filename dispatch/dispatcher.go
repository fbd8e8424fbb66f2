// Package dispatch fans a batch of payloads out to a bounded worker pool and
// collects the outcomes in completion order. Each payload is one independent
// unit of work: one handler call, including all of its internal retries, so a
// throttled unit can occupy its worker for a long time while the rest of the
// pool keeps draining the batch.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/gaborage/replicon-go/httpclient"
	"github.com/gaborage/replicon-go/logger"
)

// Handler resolves one payload against one URL. Satisfied by handler.Handler.
type Handler interface {
	Handle(ctx context.Context, url string, payload httpclient.Payload) (*httpclient.Result, error)
}

// Outcome is the terminal state of one dispatched unit. A fatal fault fails
// only its own unit; Err is set and the rest of the batch keeps going.
type Outcome struct {
	Payload httpclient.Payload
	Result  *httpclient.Result
	Err     error
}

// Dispatcher runs batches through a shared Handler.
type Dispatcher struct {
	handler    Handler
	log        logger.Logger
	onProgress func(done, total int)
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithProgress installs a callback invoked after each unit completes. The
// callback runs on the collector goroutine, never concurrently with itself.
func WithProgress(fn func(done, total int)) Option {
	return func(d *Dispatcher) {
		d.onProgress = fn
	}
}

// New creates a Dispatcher.
func New(h Handler, log logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{handler: h, log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes payloads against url with a pool of `workers` concurrent
// units and returns exactly one Outcome per payload, ordered by completion.
// With a single worker, completion order equals submission order. The
// returned slice order is observable behavior callers rely on for progress
// reporting; do not re-sort it.
func (d *Dispatcher) Run(ctx context.Context, url string, payloads []httpclient.Payload, workers int) ([]Outcome, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", workers)
	}

	total := len(payloads)
	if total == 0 {
		return nil, nil
	}
	if workers > total {
		workers = total
	}

	jobs := make(chan httpclient.Payload)
	completions := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for payload := range jobs {
				result, err := d.handler.Handle(ctx, url, payload)
				completions <- Outcome{Payload: payload, Result: result, Err: err}
			}
		}()
	}

	go func() {
		for _, payload := range payloads {
			jobs <- payload
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(completions)
	}()

	outcomes := make([]Outcome, 0, total)
	done := 0
	for outcome := range completions {
		done++
		if outcome.Err != nil {
			d.log.Error().
				Err(outcome.Err).
				Int("processed", done).
				Int("total", total).
				Msg("dispatch unit failed")
		} else {
			d.log.Info().
				Int("processed", done).
				Int("total", total).
				Msg("dispatch unit completed")
		}
		if d.onProgress != nil {
			d.onProgress(done, total)
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}
