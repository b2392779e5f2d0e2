package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Divyam-11/ExamJudge/internal/broadcast"
	"github.com/Divyam-11/ExamJudge/internal/classify"
	"github.com/Divyam-11/ExamJudge/internal/domain"
	"github.com/Divyam-11/ExamJudge/internal/firehose"
	"github.com/Divyam-11/ExamJudge/internal/observe"
)

// handleTelemetry ingests one raw telemetry record: validate, classify,
// persist, broadcast. Persistence failure does not suppress the broadcast;
// live visibility outranks retroactive audit, and the failure goes to the
// operator channel instead of the agent.
func (g *Gateway) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	var req telemetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "invalid data"})
		return
	}
	if req.RoomID == "" || req.EventType == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: domain.ErrMalformedRecord.Error()})
		return
	}

	ctx, span := g.tracer.Start(r.Context(), "gateway.ingest",
		trace.WithAttributes(
			attribute.String("room_id", req.RoomID),
			attribute.String("event_kind", req.EventType),
		))
	defer span.End()

	ok, err := g.rooms.Exists(ctx, req.RoomID)
	if err != nil {
		g.operatorEvent(ctx, req.RoomID, "room existence check failed", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "room lookup failed"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, statusResponse{Status: "error", Message: domain.ErrUnknownRoom.Error()})
		return
	}

	rec := req.record()
	rec.ReceivedAt = g.nowF()
	for _, result := range classify.Classify(rec) {
		g.dispatch(ctx, result)
	}

	writeJSON(w, http.StatusAccepted, statusResponse{Status: "accepted"})
}

// dispatch persists one classification result and fans its alert out.
func (g *Gateway) dispatch(ctx context.Context, result classify.Result) {
	entry := result.Entry
	if id, err := g.audit.Append(ctx, &entry); err != nil {
		g.metrics.PersistenceFailures.Add(ctx, 1)
		g.operatorEvent(ctx, entry.RoomID, "audit append failed, alert broadcast anyway", err)
	} else {
		entry.ID = id
	}

	g.hub.Publish(result.Alert.RoomID, broadcast.Envelope{
		Event: broadcast.EventNewAlert,
		Data:  result.Alert,
	})
	g.metrics.AlertsPublished.Add(ctx, 1)
	firehose.EmitAsync(g.firehose, result.Alert)
}

// handleLogs returns the room's audit trail, newest first.
func (g *Gateway) handleLogs(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	ok, err := g.rooms.Exists(r.Context(), roomID)
	if err != nil {
		g.operatorEvent(r.Context(), roomID, "room existence check failed", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "room lookup failed"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, statusResponse{Status: "error", Message: domain.ErrUnknownRoom.Error()})
		return
	}

	entries, err := g.audit.ListByRoom(r.Context(), roomID)
	if err != nil {
		g.operatorEvent(r.Context(), roomID, "audit query failed", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "log query failed"})
		return
	}
	if entries == nil {
		entries = []*domain.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (g *Gateway) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// operatorEvent reports a failure to the operator channel and the process log.
func (g *Gateway) operatorEvent(ctx context.Context, roomID, message string, err error) {
	log.Printf("gateway: %s (room %s): %v", message, roomID, err)
	observe.EmitAsync(g.operator, observe.Event{
		Component: "gateway",
		RoomID:    roomID,
		Message:   message,
		Err:       err,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("gateway: write response: %v", err)
	}
}
