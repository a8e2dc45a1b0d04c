// Package feed turns committed store changes into live result-set subscriptions.
package feed

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Topic names a watched collection.
const TopicProjects = "projects"

// ReportsTopic is the topic of one project's report feed.
func ReportsTopic(projectID string) string {
	return "reports:" + projectID
}

// AuditsTopic is the topic of one project's audit trail.
func AuditsTopic(projectID string) string {
	return "audits:" + projectID
}

// HubOption customizes Hub construction.
type HubOption func(*Hub)

// HubWithLogger injects a logger.
func HubWithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// HubWithPollInterval makes every watcher reload on this interval in addition
// to change notifications. Zero disables polling.
func HubWithPollInterval(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.pollInterval = d
		}
	}
}

// Hub fans change notifications out to subscribers of a topic.
type Hub struct {
	mu           sync.RWMutex
	subscribers  map[string]map[*subscriber]struct{}
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewHub constructs an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subscribers: map[string]map[*subscriber]struct{}{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Subscription receives a signal after every change to its topic. Signals
// that arrive while one is pending are merged.
type Subscription struct {
	Changes <-chan struct{}
	cancel  func()
}

// Close terminates the subscription.
func (s Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Subscribe registers for change signals on topic.
func (h *Hub) Subscribe(topic string) Subscription {
	topic = normalizeTopic(topic)
	sub := &subscriber{ch: make(chan struct{}, 1)}

	h.mu.Lock()
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = map[*subscriber]struct{}{}
	}
	h.subscribers[topic][sub] = struct{}{}
	h.mu.Unlock()

	return Subscription{
		Changes: sub.ch,
		cancel: func() {
			h.removeSubscriber(topic, sub)
		},
	}
}

// Notify signals every subscriber of the given topics.
func (h *Hub) Notify(topics ...string) {
	for _, topic := range topics {
		topic = normalizeTopic(topic)
		h.mu.RLock()
		subs := make([]*subscriber, 0, len(h.subscribers[topic]))
		for sub := range h.subscribers[topic] {
			subs = append(subs, sub)
		}
		h.mu.RUnlock()

		for _, sub := range subs {
			sub.signal()
		}
		h.logger.Debug("feed notify", "topic", topic, "subscribers", len(subs))
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[normalizeTopic(topic)])
}

func (h *Hub) removeSubscriber(topic string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.subscribers[topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, topic)
		}
	}
	sub.close()
}

func normalizeTopic(topic string) string {
	return strings.TrimSpace(topic)
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

func (s *subscriber) signal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
