package observability

import (
	"github.com/aretw0/flock/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the flock Prometheus collectors.
type Metrics struct {
	SlotsOpen       *prometheus.GaugeVec
	SlotsOpened     *prometheus.CounterVec
	SlotsClosed     *prometheus.CounterVec
	Snapshots       *prometheus.CounterVec
	SnapshotSize    *prometheus.HistogramVec
	EntitiesEnded   *prometheus.CounterVec
	StepFailures    *prometheus.CounterVec
	Collisions      prometheus.Counter
	ScenesPublished *prometheus.CounterVec
	PublishErrors   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SlotsOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "flock_slots_open",
			Help: "Inner streams currently held by a combinator",
		}, []string{"combinator"}),
		SlotsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flock_inner_subscriptions_opened_total",
			Help: "Total number of inner streams subscribed by a combinator",
		}, []string{"combinator"}),
		SlotsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flock_inner_subscriptions_closed_total",
			Help: "Total number of inner streams released by a combinator",
		}, []string{"combinator"}),
		Snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flock_snapshots_total",
			Help: "Total number of snapshot arrays emitted",
		}, []string{"combinator"}),
		SnapshotSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flock_snapshot_size",
			Help:    "Number of values in emitted snapshot arrays",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"combinator"}),
		EntitiesEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flock_entities_ended_total",
			Help: "Total number of finished entity animations",
		}, []string{"kind", "reason"}),
		StepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flock_step_failures_total",
			Help: "Total number of step function failures",
		}, []string{"kind"}),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flock_collisions_total",
			Help: "Total number of resolved collisions",
		}),
		ScenesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flock_scenes_published_total",
			Help: "Total number of scenes delivered to a sink",
		}, []string{"sink"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flock_publish_errors_total",
			Help: "Total number of failed scene deliveries",
		}, []string{"sink"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.SlotsOpen, m.SlotsOpened, m.SlotsClosed,
			m.Snapshots, m.SnapshotSize,
			m.EntitiesEnded, m.StepFailures, m.Collisions,
			m.ScenesPublished, m.PublishErrors,
		)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSlotOpen: func(e *domain.SlotEvent) {
			m.SlotsOpened.WithLabelValues(e.Combinator).Inc()
			m.SlotsOpen.WithLabelValues(e.Combinator).Set(float64(e.Open))
		},
		OnSlotClose: func(e *domain.SlotEvent) {
			m.SlotsClosed.WithLabelValues(e.Combinator).Inc()
			m.SlotsOpen.WithLabelValues(e.Combinator).Set(float64(e.Open))
		},
		OnSnapshot: func(e *domain.SnapshotEvent) {
			m.Snapshots.WithLabelValues(e.Combinator).Inc()
			m.SnapshotSize.WithLabelValues(e.Combinator).Observe(float64(e.Size))
		},
		OnEntityEnd: func(e *domain.EntityEvent) {
			kind := string(e.Entity.Kind)
			m.EntitiesEnded.WithLabelValues(kind, e.Reason).Inc()
			if e.Reason == domain.ReasonStepFailed {
				m.StepFailures.WithLabelValues(kind).Inc()
			}
		},
		OnCollision: func(*domain.Collision) {
			m.Collisions.Inc()
		},
	}
}

// Published records one delivery attempt to sink.
func (m *Metrics) Published(sink string, err error) {
	if err != nil {
		m.PublishErrors.WithLabelValues(sink).Inc()
		return
	}
	m.ScenesPublished.WithLabelValues(sink).Inc()
}
