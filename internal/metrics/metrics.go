package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rwa"

// Metrics used in monitoring service.
var (
	pinCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of IPFS pin requests",
			Name:      "pins_total",
			Namespace: namespace,
		},
		[]string{"kind", "status"},
	)
	mintCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of mint transactions sent",
			Name:      "mints_total",
			Namespace: namespace,
		},
		[]string{"status"},
	)
	propertyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of property data lookups",
			Name:      "property_requests_total",
			Namespace: namespace,
		},
		[]string{"api", "status"},
	)
	stepCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of wizard steps reached",
			Name:      "wizard_steps_total",
			Namespace: namespace,
		},
		[]string{"step"},
	)
)

func init() {
	prometheus.MustRegister(pinCounter, mintCounter, propertyCounter, stepCounter)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func IncPin(kind string, err error) {
	pinCounter.WithLabelValues(kind, status(err)).Inc()
}

func IncMint(err error) {
	mintCounter.WithLabelValues(status(err)).Inc()
}

func IncPropertyRequest(api, status string) {
	propertyCounter.WithLabelValues(api, status).Inc()
}

func IncStep(step string) {
	stepCounter.WithLabelValues(step).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
