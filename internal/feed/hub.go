package feed

import (
	"context"
	"log/slog"
	"sync/atomic"

	"hostelfix/backend/internal/models"
)

const eventBuffer = 256

// Subscriber is one live feed connection. Hub only ever writes to Send
// and calls Close once when the subscriber is dropped.
type Subscriber interface {
	HostelCode() string
	Send() chan<- models.ComplaintEvent
	Close()
}

// Hub keeps the local subscribers grouped by hostel and fans events out to them.
type Hub struct {
	clients    map[string]map[Subscriber]struct{}
	register   chan Subscriber
	unregister chan Subscriber
	events     chan models.ComplaintEvent
	done       chan struct{}
	count      atomic.Int64
	log        *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[string]map[Subscriber]struct{}),
		register:   make(chan Subscriber),
		unregister: make(chan Subscriber),
		events:     make(chan models.ComplaintEvent, eventBuffer),
		done:       make(chan struct{}),
		log:        logger.With("component", "feed.hub"),
	}
}

// Register adds s to the hub. After Run has stopped s is closed immediately.
func (h *Hub) Register(s Subscriber) {
	select {
	case h.register <- s:
	case <-h.done:
		s.Close()
	}
}

func (h *Hub) Unregister(s Subscriber) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Deliver queues an event for local subscribers. It never blocks; when the
// queue is full the event is dropped and logged.
func (h *Hub) Deliver(e models.ComplaintEvent) {
	select {
	case h.events <- e:
	default:
		h.log.Warn("event queue full, dropping event", "type", e.Type, "complaint_id", e.ComplaintID)
	}
}

// Clients reports the number of registered subscribers.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Run owns the subscriber registry until ctx is cancelled. All remaining
// subscribers are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for code, set := range h.clients {
			for s := range set {
				s.Close()
			}
			delete(h.clients, code)
		}
		h.count.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case s := <-h.register:
			code := s.HostelCode()
			set, ok := h.clients[code]
			if !ok {
				set = make(map[Subscriber]struct{})
				h.clients[code] = set
			}
			if _, dup := set[s]; !dup {
				set[s] = struct{}{}
				h.count.Add(1)
			}
			h.log.Debug("subscriber registered", "hostel_code", code, "clients", h.Clients())

		case s := <-h.unregister:
			h.drop(s)

		case e := <-h.events:
			for s := range h.clients[e.HostelCode] {
				select {
				case s.Send() <- e:
				default:
					// повільний клієнт
					h.log.Warn("subscriber too slow, disconnecting", "hostel_code", e.HostelCode)
					h.drop(s)
				}
			}
		}
	}
}

func (h *Hub) drop(s Subscriber) {
	code := s.HostelCode()
	set, ok := h.clients[code]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.clients, code)
	}
	h.count.Add(-1)
	s.Close()
}
