package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auditrepo "github.com/Divyam-11/ExamJudge/internal/auditlog/repository"
	"github.com/Divyam-11/ExamJudge/internal/broadcast"
	"github.com/Divyam-11/ExamJudge/internal/domain"
	"github.com/Divyam-11/ExamJudge/internal/presence"
	roomrepo "github.com/Divyam-11/ExamJudge/internal/room/repository"
)

type fixture struct {
	gateway *Gateway
	audit   *auditrepo.MemoryRepository
	hub     *broadcast.Hub
}

func newFixture(t *testing.T, roomIDs ...string) *fixture {
	t.Helper()
	audit := auditrepo.NewMemoryRepository()
	hub := broadcast.NewHub(8, nil)
	g := New(Deps{
		Rooms:    roomrepo.NewMemoryRepository(roomIDs...),
		Audit:    audit,
		Registry: presence.NewRegistry(hub, nil),
		Hub:      hub,
	})
	return &fixture{gateway: g, audit: audit, hub: hub}
}

func postLog(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/log", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestTelemetryRejectsMalformedBody(t *testing.T) {
	fx := newFixture(t, "room-1")
	handler := fx.gateway.Routes()

	req := httptest.NewRequest(http.MethodPost, "/log", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid JSON: got %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = postLog(t, handler, map[string]string{"event_type": "keystroke"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing room_id: got %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = postLog(t, handler, map[string]string{"room_id": "room-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing event_type: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestTelemetryRejectsUnknownRoom(t *testing.T) {
	fx := newFixture(t, "room-1")
	rec := postLog(t, fx.gateway.Routes(), map[string]string{
		"room_id":    "no-such-room",
		"event_type": "keystroke",
		"student_id": "alice",
		"keystrokes": "hello",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if entries, _ := fx.audit.ListByRoom(context.Background(), "no-such-room"); len(entries) != 0 {
		t.Fatalf("unknown room must leave no audit trail, got %d entries", len(entries))
	}
}

func TestTelemetryClassifiesPersistsAndBroadcasts(t *testing.T) {
	fx := newFixture(t, "room-1")
	sub := fx.hub.Subscribe("room-1", "dash-1")

	rec := postLog(t, fx.gateway.Routes(), map[string]string{
		"room_id":    "room-1",
		"event_type": "keystroke",
		"student_id": "alice",
		"keystrokes": "let me ask chatgpt about this",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	entries, err := fx.audit.ListByRoom(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("ListByRoom: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(entries))
	}
	if entries[0].EventType != domain.CategoryKeywordDetected {
		t.Fatalf("entry category = %q, want %q", entries[0].EventType, domain.CategoryKeywordDetected)
	}
	if entries[0].SubjectID != "alice" {
		t.Fatalf("entry subject = %q, want alice", entries[0].SubjectID)
	}

	select {
	case ev := <-sub.C():
		if ev.Event != broadcast.EventNewAlert {
			t.Fatalf("event = %q, want %q", ev.Event, broadcast.EventNewAlert)
		}
		alert, ok := ev.Data.(domain.Alert)
		if !ok {
			t.Fatalf("payload type = %T, want domain.Alert", ev.Data)
		}
		if alert.Category != domain.CategoryKeywordDetected {
			t.Fatalf("alert category = %q, want %q", alert.Category, domain.CategoryKeywordDetected)
		}
		if alert.RoomID != "room-1" {
			t.Fatalf("alert room = %q, want room-1", alert.RoomID)
		}
	case <-time.After(time.Second):
		t.Fatal("no alert delivered to subscriber")
	}
}

func TestTelemetryCleanKeystrokesProduceNothing(t *testing.T) {
	fx := newFixture(t, "room-1")
	sub := fx.hub.Subscribe("room-1", "dash-1")

	rec := postLog(t, fx.gateway.Routes(), map[string]string{
		"room_id":    "room-1",
		"event_type": "keystroke",
		"student_id": "alice",
		"keystrokes": "for i := range items",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusAccepted)
	}
	if entries, _ := fx.audit.ListByRoom(context.Background(), "room-1"); len(entries) != 0 {
		t.Fatalf("clean buffer must not be persisted, got %d entries", len(entries))
	}
	select {
	case ev := <-sub.C():
		t.Fatalf("unexpected event %q for clean buffer", ev.Event)
	default:
	}
}

// failingAudit always refuses appends.
type failingAudit struct{}

func (failingAudit) Append(context.Context, *domain.LogEntry) (int64, error) {
	return 0, errors.New("disk full")
}

func (failingAudit) ListByRoom(context.Context, string) ([]*domain.LogEntry, error) {
	return nil, errors.New("disk full")
}

func TestTelemetryBroadcastsDespitePersistenceFailure(t *testing.T) {
	hub := broadcast.NewHub(8, nil)
	g := New(Deps{
		Rooms:    roomrepo.NewMemoryRepository("room-1"),
		Audit:    failingAudit{},
		Registry: presence.NewRegistry(hub, nil),
		Hub:      hub,
	})
	sub := hub.Subscribe("room-1", "dash-1")

	rec := postLog(t, g.Routes(), map[string]string{
		"room_id":        "room-1",
		"event_type":     "paste",
		"student_id":     "bob",
		"pasted_content": "short paste",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusAccepted)
	}

	select {
	case ev := <-sub.C():
		if ev.Event != broadcast.EventNewAlert {
			t.Fatalf("event = %q, want %q", ev.Event, broadcast.EventNewAlert)
		}
	case <-time.After(time.Second):
		t.Fatal("alert suppressed by persistence failure")
	}
}

func TestLogsEndpoint(t *testing.T) {
	fx := newFixture(t, "room-1")
	handler := fx.gateway.Routes()

	req := httptest.NewRequest(http.MethodGet, "/logs/no-such-room", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown room: got %d, want %d", rec.Code, http.StatusNotFound)
	}

	// Empty room yields an empty array, not null.
	req = httptest.NewRequest(http.MethodGet, "/logs/room-1", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty room: got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := bytes.TrimSpace(rec.Body.Bytes()); string(got) != "[]" {
		t.Fatalf("empty room body = %s, want []", got)
	}

	for _, buffer := range []string{"first chatgpt", "second gemini"} {
		if rec := postLog(t, handler, map[string]string{
			"room_id":    "room-1",
			"event_type": "keystroke",
			"student_id": "alice",
			"keystrokes": buffer,
		}); rec.Code != http.StatusAccepted {
			t.Fatalf("seed post: got %d", rec.Code)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/logs/room-1", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	var entries []*domain.LogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first: the gemini buffer was ingested last.
	if entries[0].Message == entries[1].Message {
		t.Fatal("expected two distinct messages")
	}
	if entries[0].ID <= entries[1].ID {
		t.Fatalf("entries not newest-first: ids %d, %d", entries[0].ID, entries[1].ID)
	}
}

func TestHealthz(t *testing.T) {
	fx := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	fx.gateway.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	var body statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("status = %q, want ok", body.Status)
	}
}
