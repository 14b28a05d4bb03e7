// Package notify delivers session change notifications to subscribers.
package notify

import (
	"context"
	"sync"
)

// Publisher announces that the document for a session code changed.
type Publisher interface {
	Publish(ctx context.Context, code string, payload []byte) error
}

// Broker is an in-process pub/sub keyed by session code. Payloads are
// opaque; slow subscribers drop messages rather than block publishers.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel receiving every payload published for code.
func (b *Broker) Subscribe(code string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[code] == nil {
		b.subs[code] = make(map[chan []byte]struct{})
	}
	b.subs[code][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch from the subscribers of code.
func (b *Broker) Unsubscribe(code string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[code], ch)
	if len(b.subs[code]) == 0 {
		delete(b.subs, code)
	}
	b.mu.Unlock()
}

// Publish fans payload out to the local subscribers of code.
func (b *Broker) Publish(_ context.Context, code string, payload []byte) error {
	b.mu.RLock()
	for ch := range b.subs[code] {
		select {
		case ch <- payload:
		default:
			// Subscriber is slow; it will catch up on the next change.
		}
	}
	b.mu.RUnlock()
	return nil
}

// Subscribers returns the number of local subscribers of code.
func (b *Broker) Subscribers(code string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[code])
}
