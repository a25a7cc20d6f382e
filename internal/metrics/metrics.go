package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padelclub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padelclub",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created, by flow.",
		},
		[]string{"flow"},
	)

	bookingFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "padelclub",
			Name:      "booking_create_failures_total",
			Help:      "Booking creations rejected by the court backend.",
		},
	)

	rosterOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padelclub",
			Name:      "roster_ops_total",
			Help:      "Roster transitions applied, by operation.",
		},
		[]string{"op"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingFailures, rosterOps)
	})
}

// IncHTTP increments the request counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts a successful creation for a flow label.
func IncBookingCreated(flow string) {
	bookingsCreated.WithLabelValues(flow).Inc()
}

// IncBookingFailure counts a remote creation failure.
func IncBookingFailure() {
	bookingFailures.Inc()
}

// IncRosterOp counts a roster transition that changed a booking.
func IncRosterOp(op string) {
	rosterOps.WithLabelValues(op).Inc()
}
