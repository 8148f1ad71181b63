package events

import (
	"sync"
	"time"
)

// Event is the canonical event payload broadcast to websocket subscribers.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Broadcaster broadcasts events to in-process subscribers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroadcaster creates a broadcaster instance.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe subscribes to events with a buffered channel.
func (b *Broadcaster) Subscribe(buffer int) chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Broadcast broadcasts a generic event to all subscribers.
func (b *Broadcaster) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	subs := make([]chan Event, 0, len(b.subscribers))
	for ch := range b.subscribers {
		subs = append(subs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			// Drop on overflow to keep broadcasters non-blocking.
		}
	}
}

// BroadcastSearchCompleted emits a search completion event.
func (b *Broadcaster) BroadcastSearchCompleted(
	userID, query string,
	resultCount int,
	elapsed time.Duration,
) {
	b.Broadcast(Event{
		Type: "search.completed",
		Payload: map[string]any{
			"user_id":    userID,
			"query":      query,
			"results":    resultCount,
			"elapsed_ms": elapsed.Milliseconds(),
		},
	})
}

// BroadcastFeedbackRecorded emits a feedback event.
func (b *Broadcaster) BroadcastFeedbackRecorded(
	userID, feedbackID string,
	satisfaction float64,
	recordedAt time.Time,
) {
	b.Broadcast(Event{
		Type: "feedback.recorded",
		Payload: map[string]any{
			"user_id":      userID,
			"feedback_id":  feedbackID,
			"satisfaction": satisfaction,
			"recorded_at":  recordedAt.UTC().Format(time.RFC3339Nano),
		},
	})
}

// BroadcastWeightsUpdated emits a learning state change event.
func (b *Broadcaster) BroadcastWeightsUpdated(
	userID string,
	internalWeight, externalWeight float64,
	strategy string,
) {
	b.Broadcast(Event{
		Type: "learning.weights_updated",
		Payload: map[string]any{
			"user_id":         userID,
			"internal_weight": internalWeight,
			"external_weight": externalWeight,
			"strategy":        strategy,
		},
	})
}

// Close closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, ch)
	}
}
