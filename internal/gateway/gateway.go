// Package gateway is the external-facing entry point of the pipeline: it
// accepts telemetry pushes over HTTP and session signals over a persistent
// socket, and drives the classifier, presence registry, audit store, and
// broadcaster.
package gateway

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	auditrepo "github.com/Divyam-11/ExamJudge/internal/auditlog/repository"
	"github.com/Divyam-11/ExamJudge/internal/broadcast"
	"github.com/Divyam-11/ExamJudge/internal/firehose"
	"github.com/Divyam-11/ExamJudge/internal/observe"
	"github.com/Divyam-11/ExamJudge/internal/presence"
	roomrepo "github.com/Divyam-11/ExamJudge/internal/room/repository"
)

// Deps holds the gateway's collaborators. Rooms, Audit, Registry, and Hub are
// required; the rest may be nil (disabled).
type Deps struct {
	// Rooms is the room existence check, owned by the admin surface.
	Rooms roomrepo.Repository
	// Audit is the append-only audit trail.
	Audit auditrepo.Repository
	// Registry is the live presence table.
	Registry *presence.Registry
	// Hub fans events out to dashboard subscribers.
	Hub *broadcast.Hub
	// Firehose, when non-nil, receives every broadcast alert (best-effort).
	Firehose firehose.Producer
	// Operator, when non-nil, receives persistence/delivery failures.
	Operator observe.Emitter
	// Metrics counts pipeline activity. Nil means no-op counters.
	Metrics *observe.Metrics
	// Tracer instruments telemetry ingestion. Nil means no-op.
	Tracer trace.Tracer
}

// Gateway serves the HTTP and socket surfaces.
type Gateway struct {
	rooms    roomrepo.Repository
	audit    auditrepo.Repository
	registry *presence.Registry
	hub      *broadcast.Hub
	firehose firehose.Producer
	operator observe.Emitter
	metrics  *observe.Metrics
	tracer   trace.Tracer
	nowF     func() time.Time
}

// New wires a Gateway from its collaborators.
func New(deps Deps) *Gateway {
	metrics := deps.Metrics
	if metrics == nil {
		metrics, _ = observe.NewMetrics(nil)
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("")
	}
	return &Gateway{
		rooms:    deps.Rooms,
		audit:    deps.Audit,
		registry: deps.Registry,
		hub:      deps.Hub,
		firehose: deps.Firehose,
		operator: deps.Operator,
		metrics:  metrics,
		tracer:   tracer,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// Routes returns the gateway's HTTP handler.
func (g *Gateway) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /log", g.handleTelemetry)
	mux.HandleFunc("GET /logs/{roomID}", g.handleLogs)
	mux.HandleFunc("GET /healthz", g.handleHealthz)
	mux.HandleFunc("GET /ws", g.handleSocket)
	return mux
}
