package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	identifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plantify",
			Name:      "identifications_total",
			Help:      "Finished identification runs by result (success or error kind)",
		},
		[]string{"result"},
	)

	identificationLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "plantify",
			Name:      "identification_duration_seconds",
			Help:      "Duration of identification runs from acquisition to terminal state",
			Buckets:   prometheus.DefBuckets,
		},
	)

	inferenceReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plantify",
			Name:      "inference_requests_total",
			Help:      "Inference service requests by model and result",
		},
		[]string{"model", "result"},
	)

	inferenceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "plantify",
			Name:      "inference_request_duration_seconds",
			Help:      "Duration of inference service requests by model",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	captures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plantify",
			Name:      "camera_captures_total",
			Help:      "Camera capture attempts by result",
		},
		[]string{"result"},
	)

	superseded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "plantify",
			Name:      "superseded_runs_total",
			Help:      "Runs whose completion was discarded because a newer acquisition started",
		},
	)

	registerOnce sync.Once
)

// Init регистрирует коллекторы. Повторный вызов ничего не делает.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(identifications, identificationLatency, inferenceReqs, inferenceLatency, captures, superseded)
	})
}

// Handler возвращает http.Handler для /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveIdentification(result string, dur time.Duration) {
	identifications.WithLabelValues(result).Inc()
	identificationLatency.Observe(dur.Seconds())
}

func ObserveInference(model, result string, dur time.Duration) {
	inferenceReqs.WithLabelValues(model, result).Inc()
	inferenceLatency.WithLabelValues(model).Observe(dur.Seconds())
}

func IncCapture(result string) { captures.WithLabelValues(result).Inc() }
func IncSuperseded()           { superseded.Inc() }
