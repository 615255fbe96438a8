package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetbook",
			Name:      "booking_created_total",
			Help:      "Count of booking creation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	bookingFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetbook",
			Name:      "booking_finished_total",
			Help:      "Count of bookings moved to a terminal status.",
		},
		[]string{"status"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetbook",
			Name:      "http_requests_total",
			Help:      "Count of API requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingFinished, httpRequests)
	})
}

func IncBookingCreated(outcome string) {
	bookingCreated.WithLabelValues(outcome).Inc()
}

func IncBookingFinished(status string) {
	bookingFinished.WithLabelValues(status).Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}
