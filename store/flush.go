// Package store holds the in-memory stores backing the API: maps guarded
// by a mutex, snapshotted to a persist.Sink after every mutation. The
// snapshot write is fire-and-forget from the caller's point of view; a
// single writer goroutine per store coalesces requests and reports
// failures on a monitored error channel instead of failing the request.
package store

import (
	"context"
	"sync/atomic"

	"playmateserver/persist"

	"go.uber.org/zap"
)

// Flusher serializes snapshot writes for one store. Request never blocks;
// back-to-back requests collapse into a single write of the latest state.
type Flusher struct {
	name     string
	sink     persist.Sink
	marshal  func() ([]byte, error)
	logger   *zap.Logger
	requests chan struct{}
	errs     chan error
	stop     chan struct{}
	stopped  chan struct{}
	degraded atomic.Bool
}

func NewFlusher(name string, sink persist.Sink, marshal func() ([]byte, error), logger *zap.Logger) *Flusher {
	return &Flusher{
		name:     name,
		sink:     sink,
		marshal:  marshal,
		logger:   logger,
		requests: make(chan struct{}, 1),
		errs:     make(chan error, 16),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start launches the writer goroutine and the error monitor.
func (f *Flusher) Start() {
	go f.monitor()
	go f.run()
}

// Stop flushes once more and shuts the writer down.
func (f *Flusher) Stop() {
	close(f.stop)
	<-f.stopped
	close(f.errs)
}

// Request schedules an asynchronous snapshot. Never blocks: if a write is
// already pending it will pick up this mutation too.
func (f *Flusher) Request() {
	select {
	case f.requests <- struct{}{}:
	default:
	}
}

// Flush performs one synchronous snapshot write. Used by the cron job and
// on shutdown.
func (f *Flusher) Flush(ctx context.Context) error {
	data, err := f.marshal()
	if err != nil {
		return err
	}
	return f.sink.Save(ctx, data)
}

// Degraded reports whether the most recent snapshot write failed. The
// in-memory state is still authoritative; the health endpoint surfaces
// this so operators notice before a restart loses data.
func (f *Flusher) Degraded() bool {
	return f.degraded.Load()
}

func (f *Flusher) run() {
	defer close(f.stopped)
	for {
		select {
		case <-f.requests:
			if err := f.Flush(context.Background()); err != nil {
				f.degraded.Store(true)
				select {
				case f.errs <- err:
				default:
				}
			} else {
				f.degraded.Store(false)
			}
		case <-f.stop:
			if err := f.Flush(context.Background()); err != nil {
				f.logger.Error("final snapshot write failed", zap.String("store", f.name), zap.Error(err))
			}
			return
		}
	}
}

func (f *Flusher) monitor() {
	for err := range f.errs {
		f.logger.Error("snapshot write failed", zap.String("store", f.name), zap.Error(err))
	}
}
