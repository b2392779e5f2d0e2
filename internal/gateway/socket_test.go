package gateway

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	auditrepo "github.com/Divyam-11/ExamJudge/internal/auditlog/repository"
	"github.com/Divyam-11/ExamJudge/internal/broadcast"
	"github.com/Divyam-11/ExamJudge/internal/presence"
	roomrepo "github.com/Divyam-11/ExamJudge/internal/room/repository"
)

func newSocketServer(t *testing.T, roomIDs ...string) *httptest.Server {
	t.Helper()
	hub := broadcast.NewHub(8, nil)
	g := New(Deps{
		Rooms:    roomrepo.NewMemoryRepository(roomIDs...),
		Audit:    auditrepo.NewMemoryRepository(),
		Registry: presence.NewRegistry(hub, nil),
		Hub:      hub,
	})
	srv := httptest.NewServer(g.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func dialSocket(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s data: %v", event, err)
	}
	if err := conn.WriteJSON(inboundMessage{Event: event, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev wireEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func decodeData(t *testing.T, ev wireEvent, into any) {
	t.Helper()
	if err := json.Unmarshal(ev.Data, into); err != nil {
		t.Fatalf("decode %s data: %v", ev.Event, err)
	}
}

func TestSocketJoinRoomSendsSnapshot(t *testing.T) {
	srv := newSocketServer(t, "room-1")
	dash := dialSocket(t, srv)

	sendEvent(t, dash, eventJoinRoom, joinRoomData{RoomID: "room-1"})

	ev := readEvent(t, dash)
	if ev.Event != broadcast.EventUpdateStudentList {
		t.Fatalf("first event = %q, want %q", ev.Event, broadcast.EventUpdateStudentList)
	}
	var list broadcast.StudentListPayload
	decodeData(t, ev, &list)
	if len(list.Students) != 0 {
		t.Fatalf("fresh room snapshot = %v, want empty", list.Students)
	}
}

func TestSocketJoinRoomUnknownRoom(t *testing.T) {
	srv := newSocketServer(t, "room-1")
	dash := dialSocket(t, srv)

	sendEvent(t, dash, eventJoinRoom, joinRoomData{RoomID: "no-such-room"})

	ev := readEvent(t, dash)
	if ev.Event != "error" {
		t.Fatalf("event = %q, want error", ev.Event)
	}
	var payload errorPayload
	decodeData(t, ev, &payload)
	if payload.Code != errCodeUnknownRoom {
		t.Fatalf("code = %q, want %q", payload.Code, errCodeUnknownRoom)
	}
}

func TestSocketRejoinSameRoomIsNoOp(t *testing.T) {
	srv := newSocketServer(t, "room-1", "room-2")
	dash := dialSocket(t, srv)

	sendEvent(t, dash, eventJoinRoom, joinRoomData{RoomID: "room-1"})
	if ev := readEvent(t, dash); ev.Event != broadcast.EventUpdateStudentList {
		t.Fatalf("snapshot event = %q", ev.Event)
	}

	// Joining the room it already watches is not a role conflict; the
	// dashboard just gets a fresh snapshot.
	sendEvent(t, dash, eventJoinRoom, joinRoomData{RoomID: "room-1"})
	ev := readEvent(t, dash)
	if ev.Event != broadcast.EventUpdateStudentList {
		t.Fatalf("re-join answered %q, want %q", ev.Event, broadcast.EventUpdateStudentList)
	}
	var list broadcast.StudentListPayload
	decodeData(t, ev, &list)
	if len(list.Students) != 0 {
		t.Fatalf("re-join snapshot = %v, want empty", list.Students)
	}

	// A different room is still a conflict.
	sendEvent(t, dash, eventJoinRoom, joinRoomData{RoomID: "room-2"})
	ev = readEvent(t, dash)
	if ev.Event != "error" {
		t.Fatalf("cross-room join answered %q, want error", ev.Event)
	}
	var payload errorPayload
	decodeData(t, ev, &payload)
	if payload.Code != errCodeRoleConflict {
		t.Fatalf("code = %q, want %q", payload.Code, errCodeRoleConflict)
	}

	// The subscription survived both: a student joining still reaches it.
	student := dialSocket(t, srv)
	sendEvent(t, student, eventStudentConnect, studentConnectData{RoomID: "room-1", StudentID: "dave"})
	if ev := readEvent(t, dash); ev.Event != broadcast.EventStudentJoined {
		t.Fatalf("event = %q, want %q", ev.Event, broadcast.EventStudentJoined)
	}
}

func TestSocketLateDashboardSeesFullSnapshot(t *testing.T) {
	srv := newSocketServer(t, "room-1")

	// The first dashboard watches the room fill so the test knows all three
	// attaches finished before the late one joins.
	early := dialSocket(t, srv)
	sendEvent(t, early, eventJoinRoom, joinRoomData{RoomID: "room-1"})
	readEvent(t, early) // snapshot

	for _, name := range []string{"carol", "alice", "bob"} {
		student := dialSocket(t, srv)
		sendEvent(t, student, eventStudentConnect, studentConnectData{RoomID: "room-1", StudentID: name})
		readEvent(t, early) // student_joined
		readEvent(t, early) // update_student_list
	}

	late := dialSocket(t, srv)
	sendEvent(t, late, eventJoinRoom, joinRoomData{RoomID: "room-1"})

	ev := readEvent(t, late)
	if ev.Event != broadcast.EventUpdateStudentList {
		t.Fatalf("first event = %q, want %q", ev.Event, broadcast.EventUpdateStudentList)
	}
	var list broadcast.StudentListPayload
	decodeData(t, ev, &list)
	want := []string{"alice", "bob", "carol"}
	if len(list.Students) != len(want) {
		t.Fatalf("snapshot = %v, want %v", list.Students, want)
	}
	for i, name := range want {
		if list.Students[i] != name {
			t.Fatalf("snapshot = %v, want %v", list.Students, want)
		}
	}
}

func TestSocketStudentConnectReachesDashboard(t *testing.T) {
	srv := newSocketServer(t, "room-1")
	dash := dialSocket(t, srv)
	sendEvent(t, dash, eventJoinRoom, joinRoomData{RoomID: "room-1"})
	if ev := readEvent(t, dash); ev.Event != broadcast.EventUpdateStudentList {
		t.Fatalf("snapshot event = %q", ev.Event)
	}

	student := dialSocket(t, srv)
	sendEvent(t, student, eventStudentConnect, studentConnectData{RoomID: "room-1", StudentID: "alice"})

	joined := readEvent(t, dash)
	if joined.Event != broadcast.EventStudentJoined {
		t.Fatalf("event = %q, want %q", joined.Event, broadcast.EventStudentJoined)
	}
	var who broadcast.StudentPayload
	decodeData(t, joined, &who)
	if who.Name != "alice" {
		t.Fatalf("joined student = %q, want alice", who.Name)
	}

	listed := readEvent(t, dash)
	if listed.Event != broadcast.EventUpdateStudentList {
		t.Fatalf("event = %q, want %q", listed.Event, broadcast.EventUpdateStudentList)
	}
	var list broadcast.StudentListPayload
	decodeData(t, listed, &list)
	if len(list.Students) != 1 || list.Students[0] != "alice" {
		t.Fatalf("student list = %v, want [alice]", list.Students)
	}
}

func TestSocketStudentDisconnectAnnouncesLeft(t *testing.T) {
	srv := newSocketServer(t, "room-1")
	dash := dialSocket(t, srv)
	sendEvent(t, dash, eventJoinRoom, joinRoomData{RoomID: "room-1"})
	readEvent(t, dash) // snapshot

	student := dialSocket(t, srv)
	sendEvent(t, student, eventStudentConnect, studentConnectData{RoomID: "room-1", StudentID: "bob"})
	readEvent(t, dash) // student_joined
	readEvent(t, dash) // update_student_list

	student.Close()

	left := readEvent(t, dash)
	if left.Event != broadcast.EventStudentLeft {
		t.Fatalf("event = %q, want %q", left.Event, broadcast.EventStudentLeft)
	}
	var who broadcast.StudentPayload
	decodeData(t, left, &who)
	if who.Name != "bob" {
		t.Fatalf("left student = %q, want bob", who.Name)
	}

	listed := readEvent(t, dash)
	if listed.Event != broadcast.EventUpdateStudentList {
		t.Fatalf("event = %q, want %q", listed.Event, broadcast.EventUpdateStudentList)
	}
	var list broadcast.StudentListPayload
	decodeData(t, listed, &list)
	if len(list.Students) != 0 {
		t.Fatalf("student list after leave = %v, want empty", list.Students)
	}
}

func TestSocketRoleConflictRejected(t *testing.T) {
	srv := newSocketServer(t, "room-1")

	dash := dialSocket(t, srv)
	sendEvent(t, dash, eventJoinRoom, joinRoomData{RoomID: "room-1"})
	readEvent(t, dash) // snapshot

	// A dashboard connection cannot also register as a student.
	sendEvent(t, dash, eventStudentConnect, studentConnectData{RoomID: "room-1", StudentID: "mallory"})
	ev := readEvent(t, dash)
	if ev.Event != "error" {
		t.Fatalf("event = %q, want error", ev.Event)
	}
	var payload errorPayload
	decodeData(t, ev, &payload)
	if payload.Code != errCodeRoleConflict {
		t.Fatalf("code = %q, want %q", payload.Code, errCodeRoleConflict)
	}

	// The original role survives: a student joining still reaches the dashboard.
	student := dialSocket(t, srv)
	sendEvent(t, student, eventStudentConnect, studentConnectData{RoomID: "room-1", StudentID: "carol"})
	joined := readEvent(t, dash)
	if joined.Event != broadcast.EventStudentJoined {
		t.Fatalf("event = %q, want %q", joined.Event, broadcast.EventStudentJoined)
	}
}

func TestSocketStudentCannotAlsoJoinAsDashboard(t *testing.T) {
	srv := newSocketServer(t, "room-1")
	student := dialSocket(t, srv)
	sendEvent(t, student, eventStudentConnect, studentConnectData{RoomID: "room-1", StudentID: "alice"})

	sendEvent(t, student, eventJoinRoom, joinRoomData{RoomID: "room-1"})
	ev := readEvent(t, student)
	if ev.Event != "error" {
		t.Fatalf("event = %q, want error", ev.Event)
	}
	var payload errorPayload
	decodeData(t, ev, &payload)
	if payload.Code != errCodeRoleConflict {
		t.Fatalf("code = %q, want %q", payload.Code, errCodeRoleConflict)
	}
}

func TestSocketUnknownEvent(t *testing.T) {
	srv := newSocketServer(t, "room-1")
	conn := dialSocket(t, srv)
	sendEvent(t, conn, "make_coffee", map[string]string{})

	ev := readEvent(t, conn)
	if ev.Event != "error" {
		t.Fatalf("event = %q, want error", ev.Event)
	}
	var payload errorPayload
	decodeData(t, ev, &payload)
	if payload.Code != errCodeBadEvent {
		t.Fatalf("code = %q, want %q", payload.Code, errCodeBadEvent)
	}
}
