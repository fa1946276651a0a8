package publish

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 100

// Message is one payload as seen by [Hub] subscribers.
type Message struct {
	// Channel is the event channel the payload was published on.
	Channel string `json:"channel"`

	// Payload is the published JSON document.
	Payload json.RawMessage `json:"payload"`

	// PublishedAt is when the hub received the payload.
	PublishedAt time.Time `json:"published_at"`
}

// Hub is an in-process publisher with pub/sub fan-out.
//
// Hub keeps the latest message per channel, with new messages replacing
// previous values. Subscribers receive messages via buffered channels
// (buffer size 100). Sends are non-blocking; if a subscriber's buffer is
// full, the message is dropped for that subscriber rather than blocking the
// publishing task.
type Hub struct {
	mu          sync.RWMutex
	latest      map[string]Message
	subscribers map[chan Message]struct{}
	subMu       sync.RWMutex
}

// NewHub creates an empty [Hub]. No cleanup is required when done.
func NewHub() *Hub {
	return &Hub{
		latest:      make(map[string]Message),
		subscribers: make(map[chan Message]struct{}),
	}
}

// Publish stores payload as the channel's latest message and notifies all
// subscribers. It never fails.
func (h *Hub) Publish(_ context.Context, channel string, payload []byte) error {
	msg := Message{
		Channel:     channel,
		Payload:     append(json.RawMessage(nil), payload...),
		PublishedAt: time.Now(),
	}

	h.mu.Lock()
	h.latest[channel] = msg
	h.mu.Unlock()

	h.notifySubscribers(msg)
	return nil
}

// Latest returns the most recent message on channel.
func (h *Hub) Latest(channel string) (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, ok := h.latest[channel]
	return msg, ok
}

// GetAll returns the latest message of every channel, ordered by channel.
// The returned slice is a copy.
func (h *Hub) GetAll() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msgs := make([]Message, 0, len(h.latest))
	for _, msg := range h.latest {
		msgs = append(msgs, msg)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Channel < msgs[j].Channel })
	return msgs
}

// Subscribe creates a new subscription and returns a channel for receiving
// messages from every event channel.
//
// Caller must call [Hub.Unsubscribe] when done to prevent resource leaks.
func (h *Hub) Subscribe() <-chan Message {
	ch := make(chan Message, subscriberBuffer)

	h.subMu.Lock()
	h.subscribers[ch] = struct{}{}
	h.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (h *Hub) Unsubscribe(ch <-chan Message) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	for subCh := range h.subscribers {
		if subCh == ch {
			delete(h.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends msg to all active subscribers without blocking.
func (h *Hub) notifySubscribers(msg Message) {
	h.subMu.RLock()
	defer h.subMu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			// subscriber is slow, drop the message
		}
	}
}
