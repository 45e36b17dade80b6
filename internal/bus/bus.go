package bus

import (
	"sync"
)

// Subscriber is anything that can receive a published payload. Send failures
// are the subscriber's problem; the bus stays best-effort.
type Subscriber interface {
	Send(v any) error
}

// Bus is the in-process pub/sub used for room fan-out and per-user
// notification topics. Topics are created on demand and pruned when the last
// subscriber leaves. Nothing is durable: a publish with no subscribers is
// dropped.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[Subscriber]struct{}
}

func New() *Bus {
	return &Bus{topics: make(map[string]map[Subscriber]struct{})}
}

func (b *Bus) Subscribe(topic string, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[Subscriber]struct{})
		b.topics[topic] = subs
	}
	subs[s] = struct{}{}
}

func (b *Bus) Unsubscribe(topic string, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.topics[topic]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(b.topics, topic)
		}
	}
}

// Publish delivers v to the topic's current subscribers. Sends happen on a
// snapshot taken under the lock, so a slow subscriber cannot stall
// Subscribe or Unsubscribe on other connections.
func (b *Bus) Publish(topic string, v any) {
	b.mu.RLock()
	snapshot := make([]Subscriber, 0, len(b.topics[topic]))
	for s := range b.topics[topic] {
		snapshot = append(snapshot, s)
	}
	b.mu.RUnlock()

	for _, s := range snapshot {
		_ = s.Send(v) // best-effort
	}
}

// Topic names shared by the services and both socket endpoints.

func ChatTopic(chatID string) string { return "chat:" + chatID }
func UserTopic(userID string) string { return "user:" + userID }
