// Package events allows for the registering and receiving of events.
package events

import (
	"fmt"
	"sync"
)

// Message is a single event delivered to subscribers.
type Message struct {
	Kind string
	Data []byte
}

// subscriber is a registered receiver and the kinds it wants.
type subscriber struct {
	ch    chan Message
	kinds map[string]bool
}

// wants reports whether the subscriber takes messages of the kind. No
// kinds means every kind.
func (s subscriber) wants(kind string) bool {
	return len(s.kinds) == 0 || s.kinds[kind]
}

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	m  map[string]subscriber
	mu sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]subscriber),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.m {
		delete(evt.m, id)
		close(sub.ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive events of the specified kinds, or of every kind when none are
// specified.
func (evt *Events) Acquire(id string, kinds ...string) <-chan Message {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if exists {
		return sub.ch
	}

	// Since a message will be dropped if the websocket receiver is
	// not ready to receive, this arbitrary buffer should give the receiver
	// enough time to not lose a message. Websocket send could take long.
	const messageBuffer = 100

	sub = subscriber{
		ch:    make(chan Message, messageBuffer),
		kinds: make(map[string]bool, len(kinds)),
	}
	for _, k := range kinds {
		sub.kinds[k] = true
	}

	evt.m[id] = sub
	return sub.ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(sub.ch)
	return nil
}

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send signals a message to every registered channel that wants its kind.
// Send will not block waiting for a receiver on any given channel.
func (evt *Events) Send(kind string, data []byte) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	msg := Message{Kind: kind, Data: data}
	for _, sub := range evt.m {
		if !sub.wants(kind) {
			continue
		}

		select {
		case sub.ch <- msg:
		default:
		}
	}
}
