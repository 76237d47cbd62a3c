// Package analytics defines the query and index-build events and a
// collector that ships them to Kafka in batches without blocking callers.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Reuters-Inverted-Index/pkg/kafka"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

type Collector struct {
	publisher     Publisher
	eventCh       chan kafka.Event
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewCollector buffers up to bufferSize events and publishes them in
// batches of batchSize or every flushInterval, whichever comes first.
func NewCollector(publisher Publisher, bufferSize, batchSize int, flushInterval time.Duration) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 2 * time.Second
	}
	return &Collector{
		publisher:     publisher,
		eventCh:       make(chan kafka.Event, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start runs the publish loop until ctx is cancelled or Close is called.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case ev, ok := <-c.eventCh:
				if !ok {
					c.flush(context.Background(), batch)
					return
				}
				batch = append(batch, ev)
				if len(batch) >= c.batchSize {
					c.flush(ctx, batch)
					batch = batch[:0]
				}
			case <-ticker.C:
				c.flush(ctx, batch)
				batch = batch[:0]
			case <-ctx.Done():
				batch = c.drain(batch)
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				c.flush(flushCtx, batch)
				cancel()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// TrackQuery enqueues a query event, dropping it if the buffer is full.
func (c *Collector) TrackQuery(ev QueryEvent) {
	if ev.Type == "" {
		ev.Type = EventQuery
		if ev.Returned == 0 && ev.Error == "" {
			ev.Type = EventZeroResult
		}
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	c.track(kafka.Event{Key: ev.Kind, Value: ev})
}

// track drops events that arrive after Close.
func (c *Collector) track(ev kafka.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.logger.Debug("analytics event dropped (collector closed)", "key", ev.Key)
		return
	}
	select {
	case c.eventCh <- ev:
	default:
		c.logger.Warn("analytics event dropped (buffer full)", "key", ev.Key)
	}
}

// Close stops accepting events and waits for the final flush. It is safe
// to call more than once.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) drain(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case ev, ok := <-c.eventCh:
			if !ok {
				return batch
			}
			batch = append(batch, ev)
		default:
			return batch
		}
	}
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	if err := c.publisher.Publish(ctx, batch...); err != nil {
		c.logger.Error("failed to publish analytics batch", "count", len(batch), "error", err)
	}
}

// IndexNotifier publishes IndexBuiltEvent synchronously; the indexer exits
// right after a build so there is nothing to batch.
type IndexNotifier struct {
	publisher Publisher
}

func NewIndexNotifier(publisher Publisher) *IndexNotifier {
	return &IndexNotifier{publisher: publisher}
}

func (n *IndexNotifier) IndexBuilt(ctx context.Context, ev IndexBuiltEvent) error {
	ev.Type = EventIndexBuilt
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return n.publisher.Publish(ctx, kafka.Event{Key: ev.Variant, Value: ev})
}
