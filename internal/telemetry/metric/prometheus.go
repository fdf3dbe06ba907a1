package metric

import (
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

const namespace = "wirehttp"

// Registry holds all server metrics.
type Registry struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsAccepted prometheus.Counter
	ConnectionsActive   prometheus.Gauge
	ConnectionsRejected *prometheus.CounterVec
	AcceptErrors        prometheus.Counter

	// Request metrics
	ParseErrors     *prometheus.CounterVec
	UnmatchedRoutes *prometheus.CounterVec
	Responses       *prometheus.CounterVec
	ResponseBytes   prometheus.Counter
	HandlerDuration *prometheus.HistogramVec
	HandlerPanics   prometheus.Counter
}

// NewRegistry creates a registry with the server instruments plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,

		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Total number of accepted TCP connections",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of connections currently being served",
		}),
		ConnectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Connections closed by admission control",
		}, []string{"reason"}),
		AcceptErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accept_errors_total",
			Help:      "Accept calls that returned an error",
		}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Requests that failed to parse, by error code",
		}, []string{"reason"}),
		UnmatchedRoutes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmatched_routes_total",
			Help:      "Requests with no registered route",
		}, []string{"method"}),
		Responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Responses written, by status code",
		}, []string{"status"}),
		ResponseBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_bytes_total",
			Help:      "Bytes written in responses including the head",
		}),
		HandlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Handler run time",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		HandlerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_panics_total",
			Help:      "Handlers that panicked",
		}),
	}

	reg.MustRegister(
		r.ConnectionsAccepted,
		r.ConnectionsActive,
		r.ConnectionsRejected,
		r.AcceptErrors,
		r.ParseErrors,
		r.UnmatchedRoutes,
		r.Responses,
		r.ResponseBytes,
		r.HandlerDuration,
		r.HandlerPanics,
	)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// ConnOpened records an accepted connection.
func (r *Registry) ConnOpened() {
	if r == nil {
		return
	}
	r.ConnectionsAccepted.Inc()
	r.ConnectionsActive.Inc()
}

// ConnClosed records the end of a connection started with ConnOpened.
func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.ConnectionsActive.Dec()
}

// ConnRejected records a connection dropped by admission control.
func (r *Registry) ConnRejected(reason string) {
	if r == nil {
		return
	}
	r.ConnectionsRejected.WithLabelValues(reason).Inc()
}

// AcceptError records a failed Accept call.
func (r *Registry) AcceptError() {
	if r == nil {
		return
	}
	r.AcceptErrors.Inc()
}

// ParseError records a request that could not be parsed.
func (r *Registry) ParseError(reason string) {
	if r == nil {
		return
	}
	r.ParseErrors.WithLabelValues(reason).Inc()
}

// UnmatchedRoute records a request without a handler.
func (r *Registry) UnmatchedRoute(method string) {
	if r == nil {
		return
	}
	r.UnmatchedRoutes.WithLabelValues(method).Inc()
}

// Response records one serialized response of n bytes.
func (r *Registry) Response(status, n int) {
	if r == nil {
		return
	}
	r.Responses.WithLabelValues(strconv.Itoa(status)).Inc()
	r.ResponseBytes.Add(float64(n))
}

// ObserveHandler records how long a handler ran.
func (r *Registry) ObserveHandler(method string, d time.Duration) {
	if r == nil {
		return
	}
	r.HandlerDuration.WithLabelValues(method).Observe(d.Seconds())
}

// HandlerPanic records a recovered handler panic.
func (r *Registry) HandlerPanic() {
	if r == nil {
		return
	}
	r.HandlerPanics.Inc()
}

// WriteText encodes every gathered metric family to w in the text
// exposition format and returns the matching Content-Type value.
func (r *Registry) WriteText(w io.Writer) (string, error) {
	format := expfmt.NewFormat(expfmt.TypeTextPlain)

	families, err := r.Gatherer().Gather()
	if err != nil {
		return "", err
	}

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return "", err
		}
	}
	return string(format), nil
}
