package server

import (
	"sync"

	"github.com/spetersoncode/warden/event"
	"github.com/spetersoncode/warden/workflow"
)

// Broker fans run events out to live subscribers. Publishing never blocks:
// a subscriber whose buffer is full misses events.
type Broker struct {
	mu     sync.Mutex
	subs   map[chan event.Event]struct{}
	buffer int
}

// NewBroker creates a broker whose subscribers buffer up to buffer events.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broker{subs: make(map[chan event.Event]struct{}), buffer: buffer}
}

// Subscribe registers a subscriber. Call cancel to unsubscribe; it closes
// the channel.
func (b *Broker) Subscribe() (events <-chan event.Event, cancel func()) {
	ch := make(chan event.Event, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e to every subscriber with room for it.
func (b *Broker) Publish(e event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Hooks returns workflow hooks publishing every run event.
func (b *Broker) Hooks() workflow.Hooks {
	return workflow.Hooks{
		OnRunStart:  b.Publish,
		OnStepStart: b.Publish,
		OnStepEnd:   b.Publish,
		OnRoute:     b.Publish,
		OnRunEnd:    b.Publish,
	}
}
