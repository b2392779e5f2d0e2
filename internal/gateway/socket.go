package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Divyam-11/ExamJudge/internal/broadcast"
	"github.com/Divyam-11/ExamJudge/internal/domain"
)

const (
	// writeWait is the deadline for one socket write.
	writeWait = 10 * time.Second
	// pongWait is how long a client may stay silent before the read times out.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from another origin; this surface relies on the
	// room model, not origin checks, like the server it replaces.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// connRole is the per-connection state machine: a connection starts with no
// role and takes exactly one of the two. It never switches.
type connRole int

const (
	roleNone connRole = iota
	roleDashboard
	roleStudent
)

// socketConn is one live transport connection.
type socketConn struct {
	id   string
	conn *websocket.Conn

	role connRole
	sub  *broadcast.Subscriber // non-nil iff role == roleDashboard

	// egress is the single path to the wire; the writer pump is the only
	// goroutine that writes to conn after the handshake.
	egress chan broadcast.Envelope
	done   chan struct{}
}

// handleSocket upgrades the connection and runs its read loop. The connection
// is detached from the registry and the hub on any exit path.
func (g *Gateway) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("gateway: upgrade: %v", err)
		return
	}
	c := &socketConn{
		id:     uuid.NewString(),
		conn:   conn,
		egress: make(chan broadcast.Envelope, 16),
		done:   make(chan struct{}),
	}
	go c.writePump()
	g.readPump(c)
}

// readPump consumes client events until the transport closes, then cleans up.
func (g *Gateway) readPump(c *socketConn) {
	defer func() {
		// Transport close always detaches: students leave presence, dashboards
		// leave the hub, connections that never took a role just go away.
		if c.sub != nil {
			g.hub.Unsubscribe(c.sub)
		}
		g.registry.Detach(context.Background(), c.id)
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 << 10)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("gateway: socket %s read: %v", c.id, err)
			}
			return
		}
		switch msg.Event {
		case eventJoinRoom:
			g.handleJoinRoom(c, msg.Data)
		case eventStudentConnect:
			g.handleStudentConnect(c, msg.Data)
		default:
			c.sendError(errCodeBadEvent, "unknown event: "+msg.Event)
		}
	}
}

// handleJoinRoom turns a role-less connection into a dashboard subscriber and
// sends it the current presence snapshot so it needs no join-event history.
func (g *Gateway) handleJoinRoom(c *socketConn, data json.RawMessage) {
	var d joinRoomData
	if err := json.Unmarshal(data, &d); err != nil || d.RoomID == "" {
		c.sendError(errCodeBadEvent, "join_room requires room_id")
		return
	}
	if c.role == roleDashboard && c.sub != nil && c.sub.Room() == d.RoomID {
		// Re-joining the room it already watches is a no-op; just refresh
		// the snapshot.
		g.hub.SendTo(c.sub, broadcast.Envelope{
			Event: broadcast.EventUpdateStudentList,
			Data:  broadcast.StudentListPayload{Students: g.registry.Snapshot(d.RoomID)},
		})
		return
	}
	if c.role != roleNone {
		c.sendError(errCodeRoleConflict, domain.ErrRoleConflict.Error())
		return
	}
	ok, err := g.rooms.Exists(context.Background(), d.RoomID)
	if err != nil {
		g.operatorEvent(context.Background(), d.RoomID, "room existence check failed", err)
		c.sendError(errCodeUnknownRoom, "room lookup failed")
		return
	}
	if !ok {
		c.sendError(errCodeUnknownRoom, domain.ErrUnknownRoom.Error())
		return
	}

	c.sub = g.hub.Subscribe(d.RoomID, c.id)
	c.role = roleDashboard
	go c.forwardSubscription()

	g.hub.SendTo(c.sub, broadcast.Envelope{
		Event: broadcast.EventUpdateStudentList,
		Data:  broadcast.StudentListPayload{Students: g.registry.Snapshot(d.RoomID)},
	})
}

// handleStudentConnect registers a student session on a role-less connection.
func (g *Gateway) handleStudentConnect(c *socketConn, data json.RawMessage) {
	var d studentConnectData
	if err := json.Unmarshal(data, &d); err != nil || d.RoomID == "" {
		c.sendError(errCodeBadEvent, "student_connect requires room_id")
		return
	}
	subject := d.subject()
	if subject.DisplayName == "" {
		c.sendError(errCodeBadEvent, "student_connect requires student identity")
		return
	}
	if c.role != roleNone {
		c.sendError(errCodeRoleConflict, domain.ErrRoleConflict.Error())
		return
	}
	ok, err := g.rooms.Exists(context.Background(), d.RoomID)
	if err != nil {
		g.operatorEvent(context.Background(), d.RoomID, "room existence check failed", err)
		c.sendError(errCodeUnknownRoom, "room lookup failed")
		return
	}
	if !ok {
		c.sendError(errCodeUnknownRoom, domain.ErrUnknownRoom.Error())
		return
	}

	if err := g.registry.Attach(context.Background(), c.id, d.RoomID, subject); err != nil {
		log.Printf("gateway: attach %s to %s: %v", c.id, d.RoomID, err)
		c.sendError(errCodeDuplicateSession, err.Error())
		return
	}
	c.role = roleStudent
}

// forwardSubscription copies hub events to the connection's egress. When the
// hub closes the subscriber (unsubscribe or queue overflow), the transport is
// closed too, which unblocks the read loop and triggers cleanup.
func (c *socketConn) forwardSubscription() {
	for {
		select {
		case ev, ok := <-c.sub.C():
			if !ok {
				c.conn.Close()
				return
			}
			select {
			case c.egress <- ev:
			case <-c.done:
				return
			}
		case <-c.done:
			return
		}
	}
}

// writePump is the sole writer to the transport after the handshake.
func (c *socketConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev := <-c.egress:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// sendError enqueues an error event for the client. Dropped if the egress is
// full; errors are advisory and must not block the read loop.
func (c *socketConn) sendError(code, message string) {
	ev := broadcast.Envelope{Event: "error", Data: errorPayload{Code: code, Message: message}}
	select {
	case c.egress <- ev:
	default:
	}
}
