package source

import (
	"context"
	"sync"

	"github.com/fmcut/partitioner/pkg/utils"
)

// Aggregator merges the event streams of several TaskSources into one
// channel the scheduler can drain. Ack/Nack are routed back to whichever
// source emitted the event, so the scheduler never has to know which
// source a job came from.
type Aggregator struct {
	sources []TaskSource
	out     chan *TaskEvent
	logger  utils.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewAggregator creates an Aggregator over sources. bufferSize bounds the
// merged channel; sources block once the scheduler falls that far behind.
func NewAggregator(sources []TaskSource, bufferSize int, logger utils.Logger) *Aggregator {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	return &Aggregator{
		sources: sources,
		out:     make(chan *TaskEvent, bufferSize),
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start starts every source and a forwarding goroutine per source. If any
// source fails to start, the ones already started are stopped again and
// the error is returned.
func (a *Aggregator) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = true
	a.mu.Unlock()

	a.logger.Info("Starting aggregator with %d sources", len(a.sources))

	for _, src := range a.sources {
		if err := src.Start(ctx); err != nil {
			a.logger.Error("Failed to start source %s/%s: %v", src.Type(), src.Name(), err)
			a.Stop()
			return err
		}
		a.logger.Info("Started source: %s/%s", src.Type(), src.Name())

		a.wg.Add(1)
		go func(src TaskSource) {
			defer a.wg.Done()
			a.drain(ctx, src)
		}(src)
	}

	return nil
}

// drain copies events from one source into the merged channel until the
// source closes its channel or the aggregator shuts down. Events are
// stamped with the producing source's identity on the way through so
// Ack/Nack can find their way back.
func (a *Aggregator) drain(ctx context.Context, src TaskSource) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stopCh:
			return
		case event, ok := <-src.Tasks():
			if !ok {
				a.logger.Info("Source %s/%s channel closed", src.Type(), src.Name())
				return
			}
			event.SourceType = src.Type()
			event.SourceName = src.Name()

			select {
			case a.out <- event:
			case <-ctx.Done():
				return
			case <-a.stopCh:
				return
			}
		}
	}
}

// Stop stops every source, waits for the forwarders to finish, and closes
// the merged channel.
func (a *Aggregator) Stop() error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	close(a.stopCh)

	for _, src := range a.sources {
		if err := src.Stop(); err != nil {
			a.logger.Error("Failed to stop source %s/%s: %v", src.Type(), src.Name(), err)
		}
	}

	a.wg.Wait()
	close(a.out)

	a.logger.Info("Aggregator stopped")
	return nil
}

// Tasks returns the merged event channel.
func (a *Aggregator) Tasks() <-chan *TaskEvent {
	return a.out
}

// GetSource returns the source matching type and name, or nil. The source
// count is small enough that a linear scan beats maintaining an index.
func (a *Aggregator) GetSource(sourceType SourceType, name string) TaskSource {
	for _, src := range a.sources {
		if src.Type() == sourceType && src.Name() == name {
			return src
		}
	}
	return nil
}

// Ack routes an acknowledgment back to the source that emitted event.
// Events whose source has since disappeared are dropped silently.
func (a *Aggregator) Ack(ctx context.Context, event *TaskEvent) error {
	if src := a.GetSource(event.SourceType, event.SourceName); src != nil {
		return src.Ack(ctx, event)
	}
	return nil
}

// Nack routes a processing failure back to the source that emitted event.
func (a *Aggregator) Nack(ctx context.Context, event *TaskEvent, reason string) error {
	if src := a.GetSource(event.SourceType, event.SourceName); src != nil {
		return src.Nack(ctx, event, reason)
	}
	return nil
}

// HealthCheck fails on the first unhealthy source.
func (a *Aggregator) HealthCheck(ctx context.Context) error {
	for _, src := range a.sources {
		if err := src.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}
