// Package broadcast fans alerts and presence snapshots out to the dashboard
// subscribers of a room. Delivery is best-effort per subscriber: a slow or dead
// subscriber never blocks the publisher or its room-mates.
package broadcast

import "sync"

// Event names sent to dashboard subscribers.
const (
	EventNewAlert          = "new_alert"
	EventUpdateStudentList = "update_student_list"
	EventStudentJoined     = "student_joined"
	EventStudentLeft       = "student_left"
)

// Envelope is one outbound dashboard event. Data must be a value safe to
// marshal from another goroutine (alerts are passed by value, snapshots are
// freshly built slices).
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Subscriber is one dashboard connection's bounded outbound queue. The
// transport's writer pump drains C until it is closed, which happens on
// Unsubscribe or when the queue overflows.
type Subscriber struct {
	id     string
	roomID string
	out    chan Envelope
	once   sync.Once
}

// ID returns the subscriber's id (the transport connection id).
func (s *Subscriber) ID() string { return s.id }

// Room returns the room the subscriber joined.
func (s *Subscriber) Room() string { return s.roomID }

// C is the subscriber's outbound event stream. Closed when the subscriber is
// removed; the reader must treat a close as a disconnect.
func (s *Subscriber) C() <-chan Envelope { return s.out }

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.out) })
}

// Hub is the per-room subscriber table. All enqueues happen under the hub
// mutex, so within one room delivery order equals publish order.
type Hub struct {
	mu        sync.Mutex
	queueSize int
	rooms     map[string]map[string]*Subscriber
	// onOverflow is called (outside any transport I/O, under the hub lock)
	// when a subscriber is dropped because its queue stayed full. May be nil.
	onOverflow func(roomID, subscriberID string)
}

// NewHub returns a hub with the given per-subscriber queue size.
// onOverflow may be nil.
func NewHub(queueSize int, onOverflow func(roomID, subscriberID string)) *Hub {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Hub{
		queueSize:  queueSize,
		rooms:      make(map[string]map[string]*Subscriber),
		onOverflow: onOverflow,
	}
}

// Subscribe registers subscriberID as a dashboard subscriber of roomID and
// returns its queue. Idempotent: subscribing an id already in the room returns
// the existing subscriber.
func (h *Hub) Subscribe(roomID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[string]*Subscriber)
		h.rooms[roomID] = subs
	}
	if existing, ok := subs[subscriberID]; ok {
		return existing
	}
	sub := &Subscriber{
		id:     subscriberID,
		roomID: roomID,
		out:    make(chan Envelope, h.queueSize),
	}
	subs[subscriberID] = sub
	return sub
}

// Unsubscribe removes the subscriber and closes its queue. Safe to call more
// than once and for subscribers already dropped on overflow.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	h.removeLocked(sub)
	h.mu.Unlock()
}

// Publish enqueues the event for every subscriber of roomID. Never blocks: a
// subscriber whose queue is full is disconnected (closed and removed) rather
// than stalling the others.
func (h *Hub) Publish(roomID string, ev Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.rooms[roomID] {
		select {
		case sub.out <- ev:
		default:
			h.removeLocked(sub)
			if h.onOverflow != nil {
				h.onOverflow(roomID, sub.id)
			}
		}
	}
}

// SendTo enqueues the event for a single subscriber, used for the snapshot a
// dashboard receives right after joining. Same overflow policy as Publish.
// Returns false if the subscriber was dropped.
func (h *Hub) SendTo(sub *Subscriber, ev Envelope) bool {
	if sub == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.rooms[sub.roomID]; !ok || subs[sub.id] != sub {
		return false
	}
	select {
	case sub.out <- ev:
		return true
	default:
		h.removeLocked(sub)
		if h.onOverflow != nil {
			h.onOverflow(sub.roomID, sub.id)
		}
		return false
	}
}

// Subscribers returns the number of subscribers currently joined to roomID.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

// removeLocked deletes the subscriber from its room, pruning the room entry
// when it empties, and closes the queue. Caller holds h.mu.
func (h *Hub) removeLocked(sub *Subscriber) {
	subs, ok := h.rooms[sub.roomID]
	if !ok {
		return
	}
	if current, ok := subs[sub.id]; !ok || current != sub {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(h.rooms, sub.roomID)
	}
	sub.close()
}
