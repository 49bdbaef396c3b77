package identity

import "sync"

// Broadcaster fans identity-state notifications out to subscribers.
// Backends embed it to satisfy the AuthStateChanges contract.
type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan *Identity
}

func (b *Broadcaster) AuthStateChanges() (<-chan *Identity, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]chan *Identity)
	}

	id := b.next
	b.next++

	ch := make(chan *Identity, 4)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Publish delivers ident to every subscriber. Slow subscribers drop
// the notification rather than block the publisher.
func (b *Broadcaster) Publish(ident *Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ident:
		default:
		}
	}
}
