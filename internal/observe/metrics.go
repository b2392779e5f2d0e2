package observe

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the pipeline's counters. All counters are add-only and safe
// for concurrent use.
type Metrics struct {
	// AlertsPublished counts alerts fanned out to dashboards.
	AlertsPublished metric.Int64Counter
	// SubscribersDropped counts dashboard subscribers disconnected on queue overflow.
	SubscribersDropped metric.Int64Counter
	// PersistenceFailures counts audit appends that returned an error.
	PersistenceFailures metric.Int64Counter
}

// NewMetrics creates the pipeline counters on the given provider.
// A nil provider yields no-op counters.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = noop.NewMeterProvider()
	}
	meter := provider.Meter("examjudge.pipeline")

	alerts, err := meter.Int64Counter("examjudge.alerts.published",
		metric.WithDescription("Alerts fanned out to dashboard subscribers"))
	if err != nil {
		return nil, err
	}
	dropped, err := meter.Int64Counter("examjudge.subscribers.dropped",
		metric.WithDescription("Dashboard subscribers disconnected on queue overflow"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("examjudge.persistence.failures",
		metric.WithDescription("Audit log appends that failed"))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		AlertsPublished:     alerts,
		SubscribersDropped:  dropped,
		PersistenceFailures: failures,
	}, nil
}
