package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the ingestion contract hides from producers: durable
// appends succeed or fail out of band, so this is where those outcomes land.
type Metrics struct {
	ReadingsIngested prometheus.Counter
	ReadingsRejected prometheus.Counter
	EnvelopesDropped prometheus.Counter
	AppendsPersisted prometheus.Counter
	AppendsFailed    prometheus.Counter
	QueryDuration    *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReadingsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "sensor_readings_ingested_total",
			Help: "Readings accepted and written to the hot cache.",
		}),
		ReadingsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "sensor_readings_rejected_total",
			Help: "Readings rejected before either tier was written.",
		}),
		EnvelopesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "sensor_store_envelopes_dropped_total",
			Help: "Durable-append envelopes that could not be queued.",
		}),
		AppendsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sensor_store_appends_persisted_total",
			Help: "Records written to the durable store.",
		}),
		AppendsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sensor_store_appends_failed_total",
			Help: "Records the durable store refused or could not take.",
		}),
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sensor_query_duration_seconds",
			Help:    "Durable-tier query latency by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}
