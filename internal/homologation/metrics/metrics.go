package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the homologation repository.
type Metrics struct {
	HomologationsCreated prometheus.Counter
	HomologationsDeleted prometheus.Counter
	DossiersFinalised    prometheus.Counter
	JournalFailures      *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
}

// New registers the homologation metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HomologationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mss_homologations_created_total",
			Help: "Total number of homologations created",
		}),
		HomologationsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mss_homologations_deleted_total",
			Help: "Total number of homologations deleted",
		}),
		DossiersFinalised: factory.NewCounter(prometheus.CounterOpts{
			Name: "mss_dossiers_finalised_total",
			Help: "Total number of dossiers finalised",
		}),
		JournalFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mss_journal_failures_total",
			Help: "Journal events that could not be recorded, by event type",
		}, []string{"type"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mss_homologation_operation_duration_seconds",
			Help:    "Duration of homologation repository operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.HomologationsCreated.Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.HomologationsDeleted.Inc()
}

func (m *Metrics) IncrementDossierFinalised() {
	m.DossiersFinalised.Inc()
}

func (m *Metrics) IncrementJournalFailure(eventType string) {
	m.JournalFailures.WithLabelValues(eventType).Inc()
}

// ObserveOperation records the duration of operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
