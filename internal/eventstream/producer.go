package eventstream

import (
	"context"
	"time"

	"github.com/tuanvumaihuynh/product-api/internal/model"
)

// Producer emits an unbounded sequence of product events, one per interval, per subscription.
type Producer struct {
	interval time.Duration
}

// NewProducer creates a producer ticking every interval.
func NewProducer(interval time.Duration) *Producer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Producer{interval: interval}
}

// Subscribe starts a new sequence numbered from 0. The first event is sent after one interval
// and every next one at least one interval after the previous was received.
// The returned channel is unbuffered and closed once ctx is done, which also stops the timer.
func (p *Producer) Subscribe(ctx context.Context) <-chan model.ProductEvent {
	events := make(chan model.ProductEvent)

	go func() {
		defer close(events)

		timer := time.NewTimer(p.interval)
		defer timer.Stop()

		var seq int64
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			ev := model.ProductEvent{
				EventID:   seq,
				EventType: model.ProductEventType,
			}

			select {
			case <-ctx.Done():
				return
			case events <- ev:
				seq++
				timer.Reset(p.interval)
			}
		}
	}()

	return events
}
