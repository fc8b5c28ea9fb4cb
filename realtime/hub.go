package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

const subscriberBufferSize = 16

// Hub fans events out to the subscribers of a topic. Publish never
// blocks and never reports failure to the caller: the mutation that
// triggered the event already committed, so a slow or gone subscriber
// only costs itself the message.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[int]chan []byte
	nextId int
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[int]chan []byte)}
}

// Subscribe registers a listener on topic and returns its id together
// with the channel events arrive on. The channel is closed by
// Unsubscribe.
func (h *Hub) Subscribe(topic string) (int, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.topics[topic]
	if !ok {
		subscribers = make(map[int]chan []byte)
		h.topics[topic] = subscribers
	}

	h.nextId++
	ch := make(chan []byte, subscriberBufferSize)
	subscribers[h.nextId] = ch
	return h.nextId, ch
}

func (h *Hub) Unsubscribe(topic string, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.topics[topic]
	if !ok {
		return
	}
	ch, ok := subscribers[id]
	if !ok {
		return
	}
	delete(subscribers, id)
	if len(subscribers) == 0 {
		delete(h.topics, topic)
	}
	close(ch)
}

// Publish delivers event to every subscriber of topic, dropping the
// message for subscribers whose buffer is full.
func (h *Hub) Publish(topic string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "topic", topic, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.topics[topic] {
		select {
		case ch <- data:
		default:
			slog.Warn("subscriber buffer full, dropping event", "topic", topic, "subscriber_id", id)
		}
	}
}

// SubscriberCount reports how many listeners a topic currently has.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
